/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package secrets provides the generated-secrets management commands.
package secrets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/my-own-web-services/filez/internal/secrets"
)

// NewCommand creates the secrets command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage generated deployment secrets",
	}

	cmd.AddCommand(newRegenerateCommand())

	return cmd
}

// newRegenerateCommand creates the regenerate subcommand. Clearing a value
// marks it for regeneration on the next render; the renderer only fills blank
// values, so user-entered secrets are never overwritten.
func newRegenerateCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "regenerate <secrets-file>",
		Short: "Clear generated secret values so the next render regenerates them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearedCount, err := secrets.ClearSecretValues(cmd.Context(), args[0], key)
			if err != nil {
				return err
			}

			if key != "" {
				fmt.Printf("Cleared secret %q, re-render to regenerate it\n", key)
			} else {
				fmt.Printf("Cleared %d secret(s), re-render to regenerate them\n", clearedCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "clear only the named key instead of every secret")

	return cmd
}
