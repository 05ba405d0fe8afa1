package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

func stubTool(method, origin string) func(tool.Context) tool.Tool {
	return func(tool.Context) tool.Tool {
		return tool.Tool{
			Method:      method,
			Name:        method,
			Description: origin,
			Handler: func(context.Context, ledger.Client, tool.Context, json.RawMessage) (tool.Result, error) {
				return tool.Result{HumanMessage: origin}, nil
			},
		}
	}
}

func stubPlugin(name string, methods ...string) plugin.Plugin {
	ctors := make([]func(tool.Context) tool.Tool, 0, len(methods))
	for _, m := range methods {
		ctors = append(ctors, stubTool(m, name))
	}
	return plugin.New(plugin.Info{Name: name}, ctors...)
}

func methods(tools []tool.Tool) []string {
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Method)
	}
	return out
}

func TestCoreToolWinsCollision(t *testing.T) {
	core := stubPlugin("core", "transfer_hbar", "get_hbar_balance_query")
	d := NewFromConfiguration(Configuration{Plugins: []plugin.Plugin{
		stubPlugin("community", "transfer_hbar", "community_tool"),
	}}, core)

	tools := d.GetAllTools(tool.Context{}, Configuration{})
	got := methods(tools)
	want := []string{"transfer_hbar", "get_hbar_balance_query", "community_tool"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if tools[0].Description != "core" {
		t.Fatalf("transfer_hbar should come from the core plugin, got %s", tools[0].Description)
	}
}

func TestFirstPluginWinsAmongPlugins(t *testing.T) {
	d := NewFromConfiguration(Configuration{Plugins: []plugin.Plugin{
		stubPlugin("a", "shared"),
		stubPlugin("b", "shared", "only_b"),
	}})
	tools := d.GetAllTools(tool.Context{}, Configuration{})
	if len(tools) != 2 || tools[0].Description != "a" || tools[1].Method != "only_b" {
		t.Fatalf("unexpected tools %v", methods(tools))
	}
}

func TestRegistryOverwriteAndFailingFactory(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.Register(stubPlugin("dup", "old_tool"))
	registry.Register(stubPlugin("dup", "new_tool"))
	registry.Register(plugin.Definition{
		Meta:    plugin.Info{Name: "broken"},
		Factory: func(tool.Context) ([]tool.Tool, error) { return nil, errors.New("boom") },
	})
	registry.Register(plugin.Definition{
		Meta:    plugin.Info{Name: "panicky"},
		Factory: func(tool.Context) ([]tool.Tool, error) { panic("bad plugin") },
	})
	registry.Register(stubPlugin("healthy", "healthy_tool"))

	got := methods(New(registry).GetAllTools(tool.Context{}, Configuration{}))
	if fmt.Sprint(got) != "[new_tool healthy_tool]" {
		t.Fatalf("unexpected tools %v", got)
	}
}

func TestAllowList(t *testing.T) {
	d := NewFromConfiguration(Configuration{Plugins: []plugin.Plugin{stubPlugin("extra", "x", "y")}},
		stubPlugin("core", "get_hbar_balance_query", "transfer_hbar"))

	only := d.GetAllTools(tool.Context{}, Configuration{Tools: []string{"get_hbar_balance_query"}})
	if len(only) != 1 || only[0].Method != "get_hbar_balance_query" {
		t.Fatalf("unexpected filtered tools %v", methods(only))
	}
	if all := d.GetAllTools(tool.Context{}, Configuration{Tools: []string{}}); len(all) != 4 {
		t.Fatalf("empty allow-list should keep every tool, got %v", methods(all))
	}
	if none := d.GetAllTools(tool.Context{}, Configuration{Tools: []string{"missing"}}); len(none) != 0 {
		t.Fatalf("unknown names should match nothing, got %v", methods(none))
	}
}

func TestMergeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("methods are unique and core always wins", prop.ForAll(
		func(pluginCount int, overlap bool) bool {
			core := stubPlugin("core", "transfer_hbar", "get_hbar_balance_query")
			plugins := make([]plugin.Plugin, 0, pluginCount)
			for i := 0; i < pluginCount; i++ {
				ms := []string{fmt.Sprintf("plugin_%d_tool", i)}
				if overlap {
					ms = append(ms, "transfer_hbar")
				}
				plugins = append(plugins, stubPlugin(fmt.Sprintf("p%d", i), ms...))
			}
			tools := NewFromConfiguration(Configuration{Plugins: plugins}, core).GetAllTools(tool.Context{}, Configuration{})
			seen := map[string]string{}
			for _, tl := range tools {
				if _, dup := seen[tl.Method]; dup {
					return false
				}
				seen[tl.Method] = tl.Description
			}
			return len(tools) == 2+pluginCount && seen["transfer_hbar"] == "core"
		},
		gen.IntRange(0, 12), gen.Bool(),
	))

	properties.Property("allow-list of one yields one tool", prop.ForAll(
		func(pluginCount int) bool {
			plugins := make([]plugin.Plugin, 0, pluginCount)
			for i := 0; i < pluginCount; i++ {
				plugins = append(plugins, stubPlugin(fmt.Sprintf("p%d", i), fmt.Sprintf("t%d", i), "get_hbar_balance_query"))
			}
			d := NewFromConfiguration(Configuration{Plugins: plugins}, stubPlugin("core", "get_hbar_balance_query"))
			tools := d.GetAllTools(tool.Context{}, Configuration{Tools: []string{"get_hbar_balance_query"}})
			return len(tools) == 1 && tools[0].Description == "core"
		},
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
