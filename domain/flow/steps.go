package flow

import (
	"fmt"
	"sort"
	"strings"
	"taskflow/bizerror"
	"taskflow/domain"
)

// ResolveAssigneeRole derives the role responsible for a step once, when the definition is built.
func ResolveAssigneeRole(approverType domain.ApproverType, approverRole domain.Role, dynamicApproverType domain.DynamicApproverType) (domain.Role, error) {
	switch approverType {
	case domain.ApproverTypeRole:
		if approverRole == "" {
			return "", fmt.Errorf("%w: approverRole is required for ROLE steps", bizerror.ErrInvalidWorkflowDefinition)
		}
		if !approverRole.Valid() {
			return "", fmt.Errorf("%w: unknown approverRole '%s'", bizerror.ErrInvalidWorkflowDefinition, approverRole)
		}
		return approverRole, nil
	case domain.ApproverTypeDynamic:
		role, ok := domain.DynamicRole(dynamicApproverType)
		if !ok {
			return "", fmt.Errorf("%w: unknown dynamicApproverType '%s'", bizerror.ErrInvalidWorkflowDefinition, dynamicApproverType)
		}
		return role, nil
	}
	return "", fmt.Errorf("%w: unknown approverType '%s'", bizerror.ErrInvalidWorkflowDefinition, approverType)
}

// NormalizeSteps validates inputs and returns step definitions numbered 1..n following the
// requested orders, ties keep the input position.
func NormalizeSteps(inputs []StepInput) ([]domain.WorkflowStepDefinition, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one step is required", bizerror.ErrInvalidWorkflowDefinition)
	}

	steps := make([]domain.WorkflowStepDefinition, 0, len(inputs))
	for idx, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: step %d has no name", bizerror.ErrInvalidWorkflowDefinition, idx+1)
		}
		actions, err := parseActions(in.Actions)
		if err != nil {
			return nil, fmt.Errorf("%w: step '%s': %v", bizerror.ErrInvalidWorkflowDefinition, name, err)
		}
		role, err := ResolveAssigneeRole(in.ApproverType, in.ApproverRole, in.DynamicApproverType)
		if err != nil {
			return nil, err
		}

		order := in.Order
		if order <= 0 {
			order = idx + 1
		}
		step := domain.WorkflowStepDefinition{
			Name:                      name,
			Order:                     order,
			ApproverType:              in.ApproverType,
			AssigneeRole:              role,
			RequiresCommentOnReject:   in.RequiresCommentOnReject,
			RequiresCommentOnSendBack: in.RequiresCommentOnSendBack,
			Actions:                   actions,
		}
		if in.ApproverType == domain.ApproverTypeRole {
			step.ApproverRole = in.ApproverRole
		} else {
			step.DynamicApproverType = in.DynamicApproverType
		}
		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	for idx := range steps {
		steps[idx].Order = idx + 1
	}
	return steps, nil
}

func parseActions(values []string) (domain.StepActions, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no action is allowed")
	}
	actions := domain.StepActions{}
	for _, v := range values {
		action, ok := domain.ParseStepAction(v)
		if !ok {
			return nil, fmt.Errorf("unsupported action '%s'", v)
		}
		if !actions.Contains(action) {
			actions = append(actions, action)
		}
	}
	return actions, nil
}
