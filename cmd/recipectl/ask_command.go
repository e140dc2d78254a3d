package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/spf13/cobra"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var model string
	var system string

	cmd := &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Stream one chat completion to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.llmClient()
			if err != nil {
				return err
			}

			var messages []llm.Message
			if system != "" {
				messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
			}
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: strings.Join(args, " ")})

			out := cmd.OutOrStdout()
			err = client.StreamChat(cmd.Context(), llm.ChatRequest{Messages: messages, Model: model}, func(delta string) error {
				_, err := io.WriteString(out, delta)
				return err
			})
			fmt.Fprintln(out)
			return err
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model to use instead of OPENROUTER_MODEL")
	cmd.Flags().StringVar(&system, "system", "", "Optional system prompt")
	return cmd
}
