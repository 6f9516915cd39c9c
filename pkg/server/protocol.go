package server

// Op names a live session message.
type Op string

const (
	// Client to server.
	OpSet    Op = "set"
	OpGet    Op = "get"
	OpRender Op = "render"

	// Server to client.
	OpHello Op = "hello"
	OpValue Op = "value"
	OpError Op = "error"
)

// Message is the JSON frame exchanged over the live session socket.
//
//	-> {"op":"set","id":1,"target":"count","state":"count","value":4}
//	<- {"op":"render","id":1,"html":"<!DOCTYPE html>..."}
type Message struct {
	Op Op `json:"op"`

	// ID correlates a reply with its request.
	ID int64 `json:"id,omitempty"`

	// Target is the id of the element whose owner store is addressed.
	Target string `json:"target,omitempty"`

	// State is the state name within the owner store.
	State string `json:"state,omitempty"`

	Value any `json:"value,omitempty"`

	Session string `json:"session,omitempty"`
	HTML    string `json:"html,omitempty"`

	// Error is set on OpError replies. Code is the hxstate error code.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`

	// Effects lists effect failures caused by a set.
	Effects []string `json:"effects,omitempty"`
}
