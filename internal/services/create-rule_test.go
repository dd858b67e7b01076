package services

import (
	"context"
	"errors"
	"testing"

	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/dlq"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/namespace"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateRule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDlqRepo := dlq.NewMockRepository(ctrl)

	uc := &UseCase{
		NamespaceRepo: namespace.NewMockRepository(ctrl),
		DlqRepo:       mockDlqRepo,
		Brokers:       servicebus.NewMockProvider(ctrl),
		Protector:     newTestProtector(t),
	}

	validConditions := []mmodel.RuleCondition{
		{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorEquals, Value: "TTLExpired"},
	}

	testCases := []struct {
		name        string
		input       *mmodel.CreateRuleInput
		mockSetup   func()
		expectError bool
		errorCode   string
	}{
		{
			name: "Success creating rule",
			input: &mmodel.CreateRuleInput{
				Name:       "replay-ttl",
				Conditions: validConditions,
				Action:     mmodel.RuleAction{AutoReplay: true, MaxReplaysPerHour: 10},
				Enabled:    true,
			},
			mockSetup: func() {
				mockDlqRepo.EXPECT().
					CreateRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error) {
						return rule, nil
					})
			},
		},
		{
			name: "Default replay budget applied",
			input: &mmodel.CreateRuleInput{
				Name:       "replay-ttl",
				Conditions: validConditions,
				Action:     mmodel.RuleAction{AutoReplay: true},
			},
			mockSetup: func() {
				mockDlqRepo.EXPECT().
					CreateRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error) {
						assert.Equal(t, constant.DefaultMaxReplaysPerHour, rule.Action.MaxReplaysPerHour)

						return rule, nil
					})
			},
		},
		{
			name:        "Error when name missing",
			input:       &mmodel.CreateRuleInput{Conditions: validConditions},
			mockSetup:   func() {},
			expectError: true,
			errorCode:   constant.ErrMissingFieldsInRequest.Error(),
		},
		{
			name:        "Error when conditions missing",
			input:       &mmodel.CreateRuleInput{Name: "replay-ttl"},
			mockSetup:   func() {},
			expectError: true,
			errorCode:   constant.ErrMissingFieldsInRequest.Error(),
		},
		{
			name: "Error on unknown condition field",
			input: &mmodel.CreateRuleInput{
				Name: "replay-ttl",
				Conditions: []mmodel.RuleCondition{
					{Field: "Bogus", Operator: mmodel.OperatorEquals, Value: "x"},
				},
			},
			mockSetup:   func() {},
			expectError: true,
			errorCode:   constant.ErrInvalidRuleCondition.Error(),
		},
		{
			name: "Error on unknown operator",
			input: &mmodel.CreateRuleInput{
				Name: "replay-ttl",
				Conditions: []mmodel.RuleCondition{
					{Field: mmodel.FieldFailureCategory, Operator: "FuzzyMatch", Value: "x"},
				},
			},
			mockSetup:   func() {},
			expectError: true,
			errorCode:   constant.ErrInvalidRuleCondition.Error(),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.mockSetup()

			result, err := uc.CreateRule(context.Background(), testCase.input)

			if testCase.expectError {
				require.Error(t, err)
				assert.Nil(t, result)

				var validation pkg.ValidationError
				if errors.As(err, &validation) && testCase.errorCode != "" {
					assert.Equal(t, testCase.errorCode, validation.Code)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.NotEmpty(t, result.ID)
			}
		})
	}
}
