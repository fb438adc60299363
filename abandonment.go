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

package cartreel

import (
	"strings"

	"github.com/blnkfinance/cartreel/model"
)

// AbandonmentDetector decides whether a checkout update describes an abandoned cart.
// Strict mode only trusts the platform's abandoned checkout url.
type AbandonmentDetector struct {
	Strict bool
}

// IsAbandoned applies the default, non-strict heuristic.
func IsAbandoned(event model.LifecycleEvent) bool {
	return AbandonmentDetector{}.IsAbandoned(event)
}

func (d AbandonmentDetector) IsAbandoned(event model.LifecycleEvent) bool {
	if event.Completed() {
		return false
	}
	if strings.TrimSpace(event.AbandonedCheckoutURL) != "" {
		return true
	}
	if d.Strict {
		return false
	}
	return strings.TrimSpace(event.PresentmentCurrency) != "" && strings.TrimSpace(event.RecoveryURL) != ""
}
