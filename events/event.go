package events

import "reflect"

// Event is the interface that all round events must implement.
type Event interface {
	EventName() string // Returns a unique name for the event type
}

// EventHandler receives events as they are emitted
type EventHandler func(event Event)

func GetTableID(event Event) string {
	return stringField(event, "TableID")
}

func GetRoundID(event Event) string {
	return stringField(event, "RoundID")
}

func stringField(event Event, name string) string {
	val := reflect.ValueOf(event)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return ""
	}
	field := val.FieldByName(name)
	if field.IsValid() && field.Kind() == reflect.String {
		return field.String()
	}
	return ""
}
