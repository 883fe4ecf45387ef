package models

// Worker represents a single member of the crew roster.
// It contains the generated identifier, an optional manual code,
// contact details, the date the worker joined and an optional photo.
type Worker struct {
	ID          string `json:"id"`                    // Unique generated identifier, never reused
	WorkerIDNum string `json:"workerIdNum,omitempty"` // Manual display code, not unique
	Name        string `json:"name"`                  // Display name of the worker
	Phone       string `json:"phone"`                 // Phone number of the worker
	Designation string `json:"designation"`           // Job designation (mason, helper, labourer)
	JoinDate    Date   `json:"joinDate"`              // Date the worker was added to the roster
	Photo       string `json:"photo,omitempty"`       // Opaque photo payload
}

// WorkerDraft holds the user supplied fields of a worker that is about to be added.
// The identifier and the join date are assigned by the roster.
type WorkerDraft struct {
	WorkerIDNum string `validate:"max=32"`
	Name        string `validate:"required,max=128"`
	Phone       string `validate:"max=32"`
	Designation string `validate:"max=64"`
	Photo       string
}

// LastMarked is the most recent worker marked present.
type LastMarked struct {
	Name string // Name of the worker
	Time string // Time the mark was made
}

// Designations offered when adding a worker.
const (
	DesignationMason    = "মিস্ত্রি"
	DesignationHelper   = "হেল্পার"
	DesignationLabourer = "লেবার"

	DefaultDesignation = DesignationHelper
)

// Designations lists the selectable designations in display order.
var Designations = []string{DesignationMason, DesignationHelper, DesignationLabourer}
