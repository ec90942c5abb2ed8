package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/policyswarm/agent"
	"github.com/BaSui01/policyswarm/config"
)

func newPersonasCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List and validate the persona catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if cmd.Flags().Changed("file") {
					c.Run.PersonasFile = file
				}
			})
			if err != nil {
				return err
			}

			registry, err := buildRegistry(cfg, zap.NewNop())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderPersonas(registry))
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "personas YAML file (default: built-in catalogue)")
	return cmd
}

func renderPersonas(r *agent.Registry) string {
	title := lipgloss.NewStyle().Bold(true)
	name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	meta := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	lines := []string{title.Render(fmt.Sprintf("personas: %d", r.Len()))}
	for _, n := range r.Names() {
		a, _ := r.Get(n)
		tools := make([]string, 0, len(a.Tools()))
		for _, t := range a.Tools() {
			tools = append(tools, t.Name)
		}
		lines = append(lines,
			name.Render(a.Name())+" "+meta.Render(fmt.Sprintf("[%s] %d tools", a.Role(), len(tools))),
		)
		if a.Role() == agent.RoleEvaluator {
			lines = append(lines, meta.Render("  "+strings.Join(tools, ", ")))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
