package conditions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext is the subset of the e2e context the condition steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetLastResponseBody() []byte
}

// RegisterSteps registers condition calculation steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &conditionSteps{tc: tc}

	ctx.Step(`^a new felling licence application$`, steps.newApplication)
	ctx.Step(`^compartment "([^"]*)" is restocked by "([^"]*)" with species "([^"]*)" at density (\d+)$`, steps.addOperation)
	ctx.Step(`^I calculate conditions as a draft$`, steps.calculateDraft)
	ctx.Step(`^I calculate and save conditions$`, steps.calculateAndSave)
	ctx.Step(`^I retrieve the saved conditions$`, steps.retrieve)

	ctx.Step(`^there should be (\d+) conditions?$`, steps.conditionCount)
	ctx.Step(`^condition (\d+) should cover compartments "([^"]*)"$`, steps.conditionCovers)
	ctx.Step(`^condition (\d+) text should mention "([^"]*)"$`, steps.conditionTextMentions)
}

type operation struct {
	RestockingCompartmentID      string    `json:"restocking_compartment_id"`
	RestockingCompartmentNumber  string    `json:"restocking_compartment_number"`
	RestockingSubCompartmentName string    `json:"restocking_sub_compartment_name"`
	FellingCompartmentNumber     string    `json:"felling_compartment_number"`
	FellingOperationType         string    `json:"felling_operation_type"`
	RestockingProposalType       string    `json:"restocking_proposal_type"`
	RestockingDensity            float64   `json:"restocking_density"`
	TotalRestockingArea          float64   `json:"total_restocking_area"`
	Species                      []species `json:"species"`
}

type species struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
}

type conditionsBody struct {
	Conditions []struct {
		AppliesToCompartmentIDs []string `json:"applies_to_compartment_ids"`
		ConditionName           string   `json:"condition_name"`
		ConditionsText          []string `json:"conditions_text"`
	} `json:"conditions"`
}

type conditionSteps struct {
	tc            TestContext
	applicationID string
	operations    []operation
	// compartment name -> id, so assertions can use names
	compartments map[string]string
}

func (s *conditionSteps) newApplication(context.Context) error {
	s.applicationID = uuid.NewString()
	s.operations = nil
	s.compartments = map[string]string{}
	return nil
}

// addOperation parses a compartment like "12b" and a species list like "AH:40,OK:60".
func (s *conditionSteps) addOperation(_ context.Context, compartment, proposal, speciesList string, density int) error {
	number := strings.TrimRightFunc(compartment, func(r rune) bool { return r >= 'a' && r <= 'z' })
	sub := strings.TrimPrefix(compartment, number)

	compartmentID := uuid.NewString()
	s.compartments[compartment] = compartmentID

	op := operation{
		RestockingCompartmentID:      compartmentID,
		RestockingCompartmentNumber:  number,
		RestockingSubCompartmentName: sub,
		FellingCompartmentNumber:     number,
		FellingOperationType:         "clear_felling",
		RestockingProposalType:       proposal,
		RestockingDensity:            float64(density),
		TotalRestockingArea:          1,
	}
	for _, part := range strings.Split(speciesList, ",") {
		code, pct, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return fmt.Errorf("species %q must be CODE:PERCENT", part)
		}
		p, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return fmt.Errorf("species %q: %w", part, err)
		}
		op.Species = append(op.Species, species{Code: code, Percentage: p})
	}
	s.operations = append(s.operations, op)
	return nil
}

func (s *conditionSteps) calculate(draft bool) error {
	path := fmt.Sprintf("/v1/applications/%s/conditions/calculate?draft=%t", s.applicationID, draft)
	return s.tc.POST(path, map[string]any{"operations": s.operations})
}

func (s *conditionSteps) calculateDraft(context.Context) error {
	return s.calculate(true)
}

func (s *conditionSteps) calculateAndSave(context.Context) error {
	return s.calculate(false)
}

func (s *conditionSteps) retrieve(context.Context) error {
	return s.tc.GET(fmt.Sprintf("/v1/applications/%s/conditions", s.applicationID))
}

func (s *conditionSteps) body() (conditionsBody, error) {
	var body conditionsBody
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return body, fmt.Errorf("decode conditions: %w", err)
	}
	return body, nil
}

func (s *conditionSteps) conditionCount(_ context.Context, expected int) error {
	body, err := s.body()
	if err != nil {
		return err
	}
	if len(body.Conditions) != expected {
		return fmt.Errorf("expected %d conditions, got %d: %s", expected, len(body.Conditions), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *conditionSteps) conditionCovers(_ context.Context, n int, names string) error {
	body, err := s.body()
	if err != nil {
		return err
	}
	if n < 1 || n > len(body.Conditions) {
		return fmt.Errorf("no condition %d in response", n)
	}

	var want []string
	for _, name := range strings.Split(names, ",") {
		cid, ok := s.compartments[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("unknown compartment %q", name)
		}
		want = append(want, cid)
	}
	got := body.Conditions[n-1].AppliesToCompartmentIDs
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("condition %d covers %v, want %v", n, got, want)
	}
	return nil
}

func (s *conditionSteps) conditionTextMentions(_ context.Context, n int, fragment string) error {
	body, err := s.body()
	if err != nil {
		return err
	}
	if n < 1 || n > len(body.Conditions) {
		return fmt.Errorf("no condition %d in response", n)
	}
	if text := strings.Join(body.Conditions[n-1].ConditionsText, "\n"); !strings.Contains(text, fragment) {
		return fmt.Errorf("condition %d text does not mention %q:\n%s", n, fragment, text)
	}
	return nil
}
