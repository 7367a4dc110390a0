package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the subset of the e2e context the common steps need.
type TestContext interface {
	GET(path string) error
	SetHeader(key, value string)
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers background and generic assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the conditions service is running$`, steps.serviceIsRunning)
	ctx.Step(`^I act as user "([^"]*)"$`, steps.actAs)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health"); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

func (s *commonSteps) actAs(_ context.Context, userID string) error {
	s.tc.SetHeader("X-Actor-ID", userID)
	return nil
}

func (s *commonSteps) statusShouldBe(_ context.Context, expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(_ context.Context, field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}
