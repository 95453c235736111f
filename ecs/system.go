package ecs

// System represents a behavior that operates on entities with specific components.
// Systems can include Query and Singleton fields, which the Scheduler initializes
// on registration, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
