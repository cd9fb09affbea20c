package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/config"
	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/internal/history"
	"github.com/red64llc/red64/internal/orchestrator"
	"github.com/red64llc/red64/internal/state"
	"github.com/red64llc/red64/pkg/models"
)

var (
	implBrownfield bool
	implAgent      string
	implSandbox    bool
	implYes        bool
	implModel      string
	implBaseBranch string
)

var implementCmd = &cobra.Command{
	Use:   "implement <feature> \"<description>\"",
	Short: "Run a feature's full spec-driven workflow",
	Args:  cobra.ExactArgs(2),
	RunE:  runImplement,
}

func init() {
	implementCmd.Flags().BoolVar(&implBrownfield, "brownfield", false, "treat as an existing codebase (adds gap-analysis/design-validation gates)")
	implementCmd.Flags().StringVar(&implAgent, "agent", "claude", "coding-agent CLI to drive: claude, gemini, or codex")
	implementCmd.Flags().BoolVar(&implSandbox, "sandbox", false, "run the agent inside a container sandbox")
	implementCmd.Flags().BoolVar(&implYes, "yes", false, "auto-approve every gate instead of prompting")
	implementCmd.Flags().StringVar(&implModel, "model", "", "override the agent's default model")
	implementCmd.Flags().StringVar(&implBaseBranch, "base-branch", "main", "pull request base branch")
}

func runImplement(cmd *cobra.Command, args []string) error {
	feature, description := args[0], args[1]

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode := models.Greenfield
	if implBrownfield {
		mode = models.Brownfield
	}

	kind := agent.Kind(implAgent)
	model := implModel
	if model == "" {
		model = defaultModelFor(cfg, kind)
	}
	if config.GetAPIKeySource(cfg, kind) == config.KeySourceNone {
		fmt.Fprintln(os.Stderr, color.YellowString("warning: no API key configured for %s; the agent CLI's own auth will be used", kind))
	}

	facade, closeHist, err := buildFacade(workDir, kind, model)
	if err != nil {
		return err
	}
	if closeHist != nil {
		defer closeHist()
	}

	res := facade.Start(feature, description, mode)
	res = driveApprovalLoop(facade, res)
	printResult(feature, res)
	if !res.Success {
		os.Exit(1)
	}
	return nil
}

func defaultModelFor(cfg *config.Config, kind agent.Kind) string {
	switch kind {
	case agent.Claude:
		return cfg.Agents.Claude.DefaultModel
	case agent.Gemini:
		return cfg.Agents.Gemini.DefaultModel
	case agent.Codex:
		return cfg.Agents.Codex.DefaultModel
	default:
		return ""
	}
}

func buildFacade(workDir string, kind agent.Kind, model string) (*orchestrator.Facade, func(), error) {
	invoker := agent.NewInvoker()
	gitRunner := git.NewRunner(workDir)
	store := state.New(workDir)

	var closer func()
	opts := []orchestrator.Option{
		orchestrator.WithModel(model),
		orchestrator.WithSandbox(implSandbox),
		orchestrator.WithBaseBranch(implBaseBranch),
	}

	if idx, err := history.Open(workDir + "/.red64/history.db"); err == nil {
		opts = append(opts, orchestrator.WithHistoryIndex(idx))
		closer = func() { idx.Close() }
	}

	f := orchestrator.New(orchestrator.RequiredConfig{
		WorkDir: workDir,
		Agent:   kind,
		Invoker: invoker,
		Git:     gitRunner,
		Store:   store,
	}, opts...)

	return f, closer, nil
}

// driveApprovalLoop re-enters the facade at every approval gate until a
// terminal phase is reached, reading decisions from stdin unless --yes
// was passed.
func driveApprovalLoop(f *orchestrator.Facade, res orchestrator.Result) orchestrator.Result {
	reader := bufio.NewReader(os.Stdin)

	for res.Success && !res.Phase.Type.Terminal() {
		printGate(res.Phase)

		if implYes {
			res = f.Approve()
			continue
		}

		fmt.Print("approve? [y/n] ")
		line, _ := reader.ReadString('\n')
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "n") {
			res = f.Reject()
		} else {
			res = f.Approve()
		}
	}
	return res
}

func printGate(p models.Phase) {
	fmt.Println(color.CyanString("-- %s --", p.Type))
}

func printResult(feature string, res orchestrator.Result) {
	if res.Success {
		fmt.Println(color.GreenString("%s: %s", feature, res.Phase.Type))
		return
	}
	fmt.Println(color.RedString("%s: %s (%s)", feature, res.Phase.Type, res.Error))
}
