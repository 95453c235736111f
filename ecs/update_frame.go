package ecs

// UpdateFrame is handed to every system during one Scheduler.Once call.
// DeltaTime is in seconds.
type UpdateFrame struct {
	DeltaTime float64
	Frame     uint64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, frame uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     frame,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
