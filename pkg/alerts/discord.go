/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/config"
)

// DiscordTemplate renders a hub alert as a Discord embed.
const DiscordTemplate = `{
  "embeds": [{
    "title": {{json .alert.Value.Condition}},
    "description": {{json .alert.Value.Desc}},
    "color": 15158332,
    "timestamp": {{json .alert.T}},
    "fields": [
      {"name": "Hub", "value": {{json .alert.Value.Vars.Hubname}}, "inline": true},
      {"name": "Cluster", "value": {{json .alert.Value.Vars.Cluster}}, "inline": true}
    ]
  }]
}`

func NewDiscordWebhook(webhookURL string, cooldown time.Duration, logger logrus.FieldLogger) *WebhookAlerter {
	return NewWebhookAlerter(config.WebhookConfig{
		Enabled:  true,
		URL:      webhookURL,
		Template: DiscordTemplate,
		Cooldown: config.Duration(cooldown),
	}, logger)
}
