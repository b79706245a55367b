// Package automation plays sessions without a terminal: named input policies,
// YAML scenarios that switch policies over time, and batches of trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/metrics"
	"github.com/san-kum/focusdrift/internal/session"
)

var ErrFrameLimit = errors.New("automation: frame limit reached")

const ctxCheckEvery = 256

// Run starts s and plays it with p, advancing frame at a time, until the
// session ends. A positive maxFrames bounds the run.
func Run(ctx context.Context, s *session.Session, p Policy, frame time.Duration, maxFrames int) (session.Summary, error) {
	s.Start()
	for i := 0; s.Running(); i++ {
		if maxFrames > 0 && i >= maxFrames {
			sum, _ := s.End()
			return sum, ErrFrameLimit
		}
		if i%ctxCheckEvery == 0 {
			select {
			case <-ctx.Done():
				sum, _ := s.End()
				return sum, ctx.Err()
			default:
			}
		}

		p.Act(s, s.Snapshot())
		if !s.Running() {
			break
		}
		s.Advance(frame)
	}
	return s.Summary(), nil
}

// Scenario is a scripted run loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep switches policy, or ends the session, once virtual time
// reaches At.
type ScenarioStep struct {
	At     time.Duration `yaml:"at"`
	Policy string        `yaml:"policy"`
	Action string        `yaml:"action"`
}

const ActionEnd = "end"

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %q: no steps", sc.Name)
	}
	for i, step := range sc.Steps {
		switch {
		case step.At < 0:
			return fmt.Errorf("scenario %q step %d: negative time %s", sc.Name, i+1, step.At)
		case step.Action != "" && step.Action != ActionEnd:
			return fmt.Errorf("scenario %q step %d: unknown action %q", sc.Name, i+1, step.Action)
		case step.Action == "" && step.Policy == "":
			return fmt.Errorf("scenario %q step %d: needs a policy or an action", sc.Name, i+1)
		case step.Policy != "":
			if _, ok := Policies[step.Policy]; !ok {
				return fmt.Errorf("scenario %q step %d: %w: %s", sc.Name, i+1, ErrUnknownPolicy, step.Policy)
			}
		}
	}
	return nil
}

// Config resolves the scenario's configuration. Without a preset it is base
// plus the scenario seed. With one, the preset replaces base as the bottom
// layer and the config file at path and FOCUSDRIFT_* variables are loaded
// over it again, so file and environment overrides survive the switch.
func (sc *Scenario) Config(base *config.Config, path string) (*config.Config, error) {
	cfg := base.Clone()
	if sc.Preset != "" {
		p, err := config.LookupPreset(sc.Preset)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.LoadOver(p, path); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	if sc.Seed != 0 {
		cfg.Seed = sc.Seed
	}
	return cfg, nil
}

// Policy returns a policy that follows the scenario's steps.
func (sc *Scenario) Policy(rng *rand.Rand) Policy {
	steps := make([]ScenarioStep, len(sc.Steps))
	copy(steps, sc.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	return &script{name: sc.Name, steps: steps, rng: rng, current: Policies["idle"](rng)}
}

type script struct {
	name    string
	steps   []ScenarioStep
	next    int
	rng     *rand.Rand
	current Policy
}

func (p *script) Name() string { return "scenario:" + p.name }

func (p *script) Act(s *session.Session, snap session.Snapshot) {
	for p.next < len(p.steps) && snap.Elapsed >= p.steps[p.next].At.Seconds() {
		step := p.steps[p.next]
		p.next++
		if step.Action == ActionEnd {
			s.End()
			return
		}
		p.current = Policies[step.Policy](p.rng)
	}
	p.current.Act(s, snap)
}

// TrialResult is the outcome of one seeded run in a batch.
type TrialResult struct {
	Seed    int64
	Summary session.Summary
}

// RunTrials plays n independent sessions of the named policy in parallel,
// seeding them seedStart, seedStart+1, ...
func RunTrials(ctx context.Context, base *config.Config, policy string, n int, seedStart int64, log *slog.Logger) ([]TrialResult, error) {
	if _, ok := Policies[policy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}

	results := make([]TrialResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := base.Clone()
			cfg.Seed = seedStart + int64(idx)
			rng := rand.New(rand.NewSource(cfg.Seed))

			s := session.New(cfg, session.WithRand(rng))
			for _, m := range metrics.Defaults() {
				s.AddMetric(m)
			}
			p, _ := NewPolicy(policy, rng)

			sum, err := Run(ctx, s, p, cfg.FrameInterval(), 0)
			results[idx] = TrialResult{Seed: cfg.Seed, Summary: sum}
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	complete, overload := TrialStats(results)
	log.Info("trials finished", "policy", policy, "trials", n, "complete", complete, "overload", overload)
	return results, nil
}

// TrialStats counts completed and overloaded sessions.
func TrialStats(results []TrialResult) (complete int, overload int) {
	for _, r := range results {
		if r.Summary.Status == session.StatusOverload {
			overload++
		} else {
			complete++
		}
	}
	return
}
