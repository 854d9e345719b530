package domain

// PersistentModels lists every table the service owns, in migration order.
var PersistentModels = []interface{}{
	&User{}, &Project{}, &Task{}, &TaskAssignment{},
	&WorkSchedule{}, &Holiday{}, &LeaveRequest{},
	&WorkflowDefinition{}, &WorkflowStepDefinition{}, &WorkflowInstance{}, &WorkflowAction{},
	&Notification{},
}
