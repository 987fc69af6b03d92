package cli

import (
	"context"
	"os"

	"github.com/cruciblehq/xcforge/internal/build"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/variant"
)

// Represents the 'xcforge plan' command.
type PlanCmd struct {
	ManifestFlags `embed:""`
}

type planView struct {
	Platforms []platformView `yaml:"platforms"`
	Skipped   []string       `yaml:"skipped,omitempty"`
}

type platformView struct {
	Name             string        `yaml:"name"`
	DeploymentTarget string        `yaml:"deployment_target,omitempty"`
	Variants         []variantView `yaml:"variants"`
	Targets          []string      `yaml:"targets"`
}

type variantView struct {
	SDK         string   `yaml:"sdk"`
	Destination string   `yaml:"destination"`
	Archs       []string `yaml:"archs"`
	Flags       []string `yaml:"flags"`
}

// Executes the plan command.
//
// Prints the platforms, SDK variants and targets a build would archive,
// without invoking the build tool.
func (c *PlanCmd) Run(ctx context.Context) error {
	m, platforms, err := c.load()
	if err != nil {
		return err
	}

	plan, err := build.Plan(build.Options{
		Manifest:      m,
		Platforms:     platforms,
		Configuration: c.Configuration,
	})
	if err != nil {
		return err
	}

	return report.PrintYAML(os.Stdout, newPlanView(plan))
}

func newPlanView(plan *variant.Plan) planView {
	var view planView
	for _, pp := range plan.Platforms {
		pv := platformView{
			Name:             pp.Platform.Name,
			DeploymentTarget: pp.Platform.DeploymentTarget,
		}
		for _, v := range pp.Variants {
			pv.Variants = append(pv.Variants, variantView{
				SDK:         v.SDK.Name,
				Destination: v.SDK.GenericDestination(),
				Archs:       v.SDK.Archs,
				Flags:       v.Flags(),
			})
		}
		for _, member := range pp.Members {
			pv.Targets = append(pv.Targets, member.Target.Label)
		}
		view.Platforms = append(view.Platforms, pv)
	}
	for _, p := range plan.Skipped {
		view.Skipped = append(view.Skipped, p.Name)
	}
	return view
}
