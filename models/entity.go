package models

import "fmt"

// EntityKind identifies one of the fixed set of synchronized entity types.
// The engine treats every kind's payload as an opaque document; the kind
// matters only for keying, ordering, and foreign-key link resolution.
type EntityKind string

const (
	EntityNotebook      EntityKind = "notebook"
	EntityNote          EntityKind = "note"
	EntityTag           EntityKind = "tag"
	EntityNoteTag       EntityKind = "note_tag"
	EntityTaskList      EntityKind = "task_list"
	EntityTask          EntityKind = "task"
	EntityReminder      EntityKind = "reminder"
	EntityAttachment    EntityKind = "attachment"
	EntityComment       EntityKind = "comment"
	EntityContact       EntityKind = "contact"
	EntityCalendarEvent EntityKind = "calendar_event"
	EntityHabit         EntityKind = "habit"
	EntityHabitLog      EntityKind = "habit_log"
	EntityBookmark      EntityKind = "bookmark"
	EntityHighlight     EntityKind = "highlight"
	EntityTemplate      EntityKind = "template"
	EntitySavedSearch   EntityKind = "saved_search"
	EntityPreference    EntityKind = "preference"
)

// AllEntityKinds lists every synchronized kind. Snapshot enumeration and
// pull-apply iterate this slice, so the order here is the order rows are
// visited; parents are listed before their typical children to keep forward
// references rare.
var AllEntityKinds = []EntityKind{
	EntityNotebook,
	EntityNote,
	EntityTag,
	EntityNoteTag,
	EntityTaskList,
	EntityTask,
	EntityReminder,
	EntityAttachment,
	EntityComment,
	EntityContact,
	EntityCalendarEvent,
	EntityHabit,
	EntityHabitLog,
	EntityBookmark,
	EntityHighlight,
	EntityTemplate,
	EntitySavedSearch,
	EntityPreference,
}

var entityKindSet = func() map[EntityKind]struct{} {
	m := make(map[EntityKind]struct{}, len(AllEntityKinds))
	for _, k := range AllEntityKinds {
		m[k] = struct{}{}
	}
	return m
}()

// ParseEntityKind validates tag against the closed kind set.
func ParseEntityKind(tag string) (EntityKind, error) {
	k := EntityKind(tag)
	if _, ok := entityKindSet[k]; !ok {
		return "", fmt.Errorf("unknown entity kind %q", tag)
	}
	return k, nil
}

// Valid reports whether k belongs to the closed kind set.
func (k EntityKind) Valid() bool {
	_, ok := entityKindSet[k]
	return ok
}

// entityReferences maps a kind to its foreign-key document fields and the
// parent kind each field points at. Pull apply uses this table to detect
// forward references (child delivered before parent) and defer their link
// resolution.
var entityReferences = map[EntityKind]map[string]EntityKind{
	EntityNote:       {"notebook_id": EntityNotebook},
	EntityNoteTag:    {"note_id": EntityNote, "tag_id": EntityTag},
	EntityTask:       {"task_list_id": EntityTaskList, "note_id": EntityNote},
	EntityReminder:   {"task_id": EntityTask},
	EntityAttachment: {"note_id": EntityNote},
	EntityComment:    {"note_id": EntityNote},
	EntityHabitLog:   {"habit_id": EntityHabit},
	EntityHighlight:  {"bookmark_id": EntityBookmark},
}

// References returns the foreign-key fields of k, keyed by document field
// name with the referenced parent kind as value. The map is shared; callers
// must not mutate it.
func (k EntityKind) References() map[string]EntityKind {
	return entityReferences[k]
}
