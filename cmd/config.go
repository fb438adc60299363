/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

const redacted = "********"

// configCommands prints the computed configuration with credentials masked.
func configCommands(c *cartreelInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "config outputs your instance's computed configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := *c.cnf
			cfg.Server.SecretKey = mask(cfg.Server.SecretKey)
			cfg.SMTP.Password = mask(cfg.SMTP.Password)
			cfg.Shopify.ApiSecret = mask(cfg.Shopify.ApiSecret)
			tokens := make(map[string]string, len(cfg.Shopify.AccessTokens))
			for shop := range cfg.Shopify.AccessTokens {
				tokens[shop] = redacted
			}
			cfg.Shopify.AccessTokens = tokens

			data, err := json.MarshalIndent(cfg, "", "    ")
			if err != nil {
				log.Fatalf("Error printing config: %v\n", err)
			}
			fmt.Println(string(data))
		},
	}
	return cmd
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}
