// Package bus carries typed requests between the user-facing surfaces and
// the session that owns the live list.
package bus

import (
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
)

// Request is one of the request types declared in this package
type Request interface {
	// Action returns the wire name of the request
	Action() string
	isRequest()
}

// Response is one of the response types declared in this package
type Response interface {
	isResponse()
}

// AnalyzeMessages runs a classification pass. With no messages the
// current list items are classified.
type AnalyzeMessages struct {
	Messages []core.Message `json:"messages"`
	Method   core.Method    `json:"method"`
}

type AddImportantContact struct {
	Contact string `json:"contact"`
}

type RemoveImportantContact struct {
	Contact string `json:"contact"`
}

type AddPriorityTag struct {
	Tag string `json:"tag"`
}

type RemovePriorityTag struct {
	Tag string `json:"tag"`
}

type SetAutomation struct {
	Enabled  bool   `json:"enabled"`
	Template string `json:"template"`
}

type ToggleSort struct{}

type ToggleSpamDetection struct{}

type GetState struct{}

// RefreshMessages rescans the list source and re-applies the active sort
type RefreshMessages struct{}

type SendAutomatedResponse struct {
	MessageLink  string `json:"messageLink"`
	ResponseText string `json:"responseText"`
}

type ProcessUnresponded struct{}

func (AnalyzeMessages) Action() string        { return "analyzeMessages" }
func (AddImportantContact) Action() string    { return "addImportantContact" }
func (RemoveImportantContact) Action() string { return "removeImportantContact" }
func (AddPriorityTag) Action() string         { return "addPriorityTag" }
func (RemovePriorityTag) Action() string      { return "removePriorityTag" }
func (SetAutomation) Action() string          { return "setAutomation" }
func (ToggleSort) Action() string             { return "toggleSort" }
func (ToggleSpamDetection) Action() string    { return "toggleSpamDetection" }
func (GetState) Action() string               { return "getState" }
func (RefreshMessages) Action() string        { return "refreshMessages" }
func (SendAutomatedResponse) Action() string  { return "sendAutomatedResponse" }
func (ProcessUnresponded) Action() string     { return "processUnresponded" }

func (AnalyzeMessages) isRequest()        {}
func (AddImportantContact) isRequest()    {}
func (RemoveImportantContact) isRequest() {}
func (AddPriorityTag) isRequest()         {}
func (RemovePriorityTag) isRequest()      {}
func (SetAutomation) isRequest()          {}
func (ToggleSort) isRequest()             {}
func (ToggleSpamDetection) isRequest()    {}
func (GetState) isRequest()               {}
func (RefreshMessages) isRequest()        {}
func (SendAutomatedResponse) isRequest()  {}
func (ProcessUnresponded) isRequest()     {}

// Ack acknowledges a request; Reason is set when Success is false
type Ack struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// State mirrors the session state
type State struct {
	IsSorted       bool `json:"isSorted"`
	IsSpamFiltered bool `json:"isSpamFiltered"`
	MessageCount   int  `json:"messageCount"`
}

// Summary reports a batch of automated responses
type Summary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"success"`
}

func (Ack) isResponse()     {}
func (State) isResponse()   {}
func (Summary) isResponse() {}
