package e2e

import (
	"github.com/cucumber/godog"

	"fellinglicence/e2e/steps/common"
	"fellinglicence/e2e/steps/conditions"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	conditions.RegisterSteps(ctx, tc)
}
