package domain

import "time"

// SelectionDraft is the immutable working state of the assignment-attachment
// wizard (date range -> employees -> assignments -> review). Every transition
// returns a new value; callers thread it through and never mutate shared
// state. Invariant: every selected assignment belongs to a selected employee,
// so deselecting an employee drops that employee's assignment selections.
type SelectionDraft struct {
	StartDate           time.Time
	EndDate             time.Time
	selectedEmployees   map[string]bool
	selectedAssignments map[string]string // assignmentID -> employeeID
}

// NewSelectionDraft starts an empty selection for the given date range.
func NewSelectionDraft(start, end time.Time) SelectionDraft {
	return SelectionDraft{
		StartDate:           start,
		EndDate:             end,
		selectedEmployees:   map[string]bool{},
		selectedAssignments: map[string]string{},
	}
}

func (d SelectionDraft) clone() SelectionDraft {
	employees := make(map[string]bool, len(d.selectedEmployees))
	for k, v := range d.selectedEmployees {
		employees[k] = v
	}
	assignments := make(map[string]string, len(d.selectedAssignments))
	for k, v := range d.selectedAssignments {
		assignments[k] = v
	}
	return SelectionDraft{
		StartDate:           d.StartDate,
		EndDate:             d.EndDate,
		selectedEmployees:   employees,
		selectedAssignments: assignments,
	}
}

// SelectEmployee adds an employee to the selection.
func (d SelectionDraft) SelectEmployee(employeeID string) SelectionDraft {
	next := d.clone()
	next.selectedEmployees[employeeID] = true
	return next
}

// DeselectEmployee removes an employee and, to preserve the invariant, every
// assignment selection that belonged to them.
func (d SelectionDraft) DeselectEmployee(employeeID string) SelectionDraft {
	next := d.clone()
	delete(next.selectedEmployees, employeeID)
	for assignmentID, ownerID := range next.selectedAssignments {
		if ownerID == employeeID {
			delete(next.selectedAssignments, assignmentID)
		}
	}
	return next
}

// SelectAssignment adds an assignment selection. The owning employee must
// already be selected; otherwise the draft is returned unchanged.
func (d SelectionDraft) SelectAssignment(assignmentID, employeeID string) SelectionDraft {
	if !d.selectedEmployees[employeeID] {
		return d
	}
	next := d.clone()
	next.selectedAssignments[assignmentID] = employeeID
	return next
}

// DeselectAssignment removes a single assignment selection.
func (d SelectionDraft) DeselectAssignment(assignmentID string) SelectionDraft {
	next := d.clone()
	delete(next.selectedAssignments, assignmentID)
	return next
}

// IsEmployeeSelected reports whether the employee is part of the selection.
func (d SelectionDraft) IsEmployeeSelected(employeeID string) bool {
	return d.selectedEmployees[employeeID]
}

// IsAssignmentSelected reports whether the assignment is part of the selection.
func (d SelectionDraft) IsAssignmentSelected(assignmentID string) bool {
	_, ok := d.selectedAssignments[assignmentID]
	return ok
}

// SelectedAssignmentIDs returns the selected assignment IDs, the payload the
// review step hands to AddLineItem.
func (d SelectionDraft) SelectedAssignmentIDs() []string {
	ids := make([]string, 0, len(d.selectedAssignments))
	for id := range d.selectedAssignments {
		ids = append(ids, id)
	}
	return ids
}

// EmployeeCount returns how many employees are selected.
func (d SelectionDraft) EmployeeCount() int {
	return len(d.selectedEmployees)
}
