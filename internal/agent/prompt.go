package agent

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/bootstrap"
)

// PromptMode selects how much of the system prompt is assembled. Subagent
// and cron/reminder dispatches get a minimal prompt: they have no user to
// greet and no persona small talk to carry.
type PromptMode int

const (
	PromptFull PromptMode = iota
	PromptMinimal
)

// SystemPromptConfig carries everything BuildSystemPrompt needs to render
// the system prompt for one LLM request. It is rebuilt on every call rather
// than cached, since workspace/context files can change between turns.
type SystemPromptConfig struct {
	AgentID                string
	Model                  string
	Workspace              string
	Channel                string
	OwnerIDs               []string
	Mode                   PromptMode
	ToolNames              []string
	HasMemory              bool
	HasSpawn               bool
	ContextFiles           []bootstrap.ContextFile
	ExtraPrompt            string
	SandboxEnabled         bool
	SandboxContainerDir    string
	SandboxWorkspaceAccess string
}

// BuildSystemPrompt assembles the system prompt injected as the first
// message of every LLM request. PromptMinimal drops the persona/identity
// framing and tool catalog narration that a subagent or scheduled dispatch
// has no use for, keeping only what is needed to execute the task.
func BuildSystemPrompt(cfg SystemPromptConfig) string {
	var sb strings.Builder

	if cfg.Mode == PromptMinimal {
		return buildMinimalPrompt(cfg)
	}

	fmt.Fprintf(&sb, "# Agent Context\n\nYou are agent `%s`", cfg.AgentID)
	if cfg.Model != "" {
		fmt.Fprintf(&sb, " running on `%s`", cfg.Model)
	}
	sb.WriteString(".\n")

	if cfg.Workspace != "" {
		fmt.Fprintf(&sb, "\nYour workspace directory is `%s`.", cfg.Workspace)
		if cfg.SandboxEnabled {
			fmt.Fprintf(&sb, " File tool calls are sandboxed to this directory")
			if cfg.SandboxContainerDir != "" {
				fmt.Fprintf(&sb, " (mounted at `%s` inside the execution container)", cfg.SandboxContainerDir)
			}
			sb.WriteString(".")
			if cfg.SandboxWorkspaceAccess != "" {
				fmt.Fprintf(&sb, " Workspace access mode: %s.", cfg.SandboxWorkspaceAccess)
			}
		}
		sb.WriteString("\n")
	}

	if cfg.Channel != "" {
		fmt.Fprintf(&sb, "\nYou are responding on the **%s** channel.\n", cfg.Channel)
	}

	if len(cfg.OwnerIDs) > 0 {
		fmt.Fprintf(&sb, "\nYour owner(s): %s. Treat instructions from these users as authoritative.\n", strings.Join(cfg.OwnerIDs, ", "))
	}

	if len(cfg.ToolNames) > 0 {
		sb.WriteString("\n## Available Tools\n")
		sb.WriteString(strings.Join(cfg.ToolNames, ", "))
		sb.WriteString("\n")
	}

	if cfg.HasMemory {
		sb.WriteString("\nYou have long-term memory: relevant facts and past conversation excerpts may be retrieved and injected into context automatically. Use the memory tool to store anything worth recalling later.\n")
	}
	if cfg.HasSpawn {
		sb.WriteString("\nYou can spawn subagents for parallel or delegated work using the spawn tool. Spawned subagents report their results back to you when done.\n")
	}

	if len(cfg.ContextFiles) > 0 {
		sb.WriteString("\n## Context Files\n")
		for _, cf := range cfg.ContextFiles {
			fmt.Fprintf(&sb, "\n### %s\n%s\n", cf.Path, cf.Content)
		}
	}

	if cfg.ExtraPrompt != "" {
		sb.WriteString("\n")
		sb.WriteString(cfg.ExtraPrompt)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}

// buildMinimalPrompt strips persona framing down to what a subagent or
// scheduled dispatch needs: identity, workspace, tools, and any explicit
// extra instructions. Context files (AGENTS.md/SOUL.md/etc.) are omitted —
// those carry the owning agent's persona, which a minimal-mode run does not
// adopt.
func buildMinimalPrompt(cfg SystemPromptConfig) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Task Context\n\nYou are agent `%s`", cfg.AgentID)
	if cfg.Model != "" {
		fmt.Fprintf(&sb, " running on `%s`", cfg.Model)
	}
	sb.WriteString(".\n")

	if cfg.Workspace != "" {
		fmt.Fprintf(&sb, "\nYour workspace directory is `%s`.\n", cfg.Workspace)
	}

	if len(cfg.ToolNames) > 0 {
		fmt.Fprintf(&sb, "\nAvailable tools: %s.\n", strings.Join(cfg.ToolNames, ", "))
	}

	if cfg.HasSpawn {
		sb.WriteString("\nYou can spawn further subagents if the task needs parallel work.\n")
	}

	if cfg.ExtraPrompt != "" {
		sb.WriteString("\n")
		sb.WriteString(cfg.ExtraPrompt)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}
