package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickloop/ecs"
)

// refreshEvery bounds how many renders the browser reuses a cache whose
// entity count has not moved. Entities die and spawn in equal numbers often.
const refreshEvery = 30

type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []string
	ComponentCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	lastLen       int
	age           int
	sortColumn    int
	sortAscending bool
}

// EntityBrowser lists the target's entities a page at a time and remembers
// which one is selected.
type EntityBrowser struct {
	cache     *EntityBrowserCache
	selected  ecs.EntityId
	filter    string
	perPage   int
	pageIndex int
}

func NewEntityBrowser(perPage int) EntityBrowser {
	return EntityBrowser{
		cache:   &EntityBrowserCache{sortAscending: true},
		perPage: perPage,
	}
}

func (eb *EntityBrowser) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filter = ""
		eb.pageIndex = 0
	}
	imgui.SameLine()
	if imgui.Button("Refresh") {
		eb.cache.entities = nil
	}

	filteredEntities := eb.getFilteredEntities()
	page := eb.page(filteredEntities)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, entity := range page {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if totalPages := eb.pageCount(len(filteredEntities)); totalPages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.pageIndex+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.pageIndex > 0 {
			eb.pageIndex--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.pageIndex < totalPages-1 {
			eb.pageIndex++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowser) rebuildCacheIfNeeded(storage *ecs.Storage) {
	eb.cache.age++
	if eb.cache.lastLen != storage.Len() || eb.cache.age >= refreshEvery {
		eb.cache.entities = nil
	}

	if eb.cache.entities == nil {
		eb.rebuildCache(storage)
	}
}

func (eb *EntityBrowser) rebuildCache(storage *ecs.Storage) {
	eb.cache.entities = make([]EntityInfo, 0, storage.Len())
	eb.cache.lastLen = storage.Len()
	eb.cache.age = 0

	for entityId := range storage.Entities() {
		types := storage.ComponentTypes(entityId)
		componentTypes := make([]string, len(types))
		for i, t := range types {
			componentTypes[i] = t.String()
		}

		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             entityId,
			ComponentTypes: componentTypes,
			ComponentCount: len(componentTypes),
		})
	}

	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		if !eb.cache.sortAscending {
			a, b = b, a
		}
		var less bool

		switch eb.cache.sortColumn {
		case 1:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 2:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.ID < b.ID
		}
		return less
	})
}

func (eb *EntityBrowser) getFilteredEntities() []EntityInfo {
	if eb.filter == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filter)

	for _, entity := range eb.cache.entities {
		idStr := fmt.Sprintf("%d", entity.ID)
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) && !strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}

func (eb *EntityBrowser) pageCount(n int) int {
	if eb.perPage <= 0 {
		return 1
	}
	return max(1, (n+eb.perPage-1)/eb.perPage)
}

// page returns the current page of entities, pulling currentPage back in
// range when the list shrank underneath it.
func (eb *EntityBrowser) page(entities []EntityInfo) []EntityInfo {
	if eb.perPage <= 0 {
		return entities
	}
	eb.pageIndex = min(eb.pageIndex, eb.pageCount(len(entities))-1)

	start := eb.pageIndex * eb.perPage
	end := min(start+eb.perPage, len(entities))
	return entities[start:end]
}

func (eb *EntityBrowser) Selected() ecs.EntityId {
	return eb.selected
}
