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

package api

import (
	"time"

	"github.com/domhub/hubmoni/pkg/moni"
)

type TopologyView struct {
	Hub       string     `json:"hub"`
	Prefix    string     `json:"prefix"`
	ScannedAt time.Time  `json:"scanned_at"`
	Cards     []CardView `json:"cards"`
}

type CardView struct {
	ID       int        `json:"id"`
	Revision int        `json:"revision"`
	Serial   string     `json:"serial"`
	Pairs    []PairView `json:"pairs"`
}

type PairView struct {
	ID      int      `json:"id"`
	Plugged bool     `json:"plugged"`
	Powered bool     `json:"powered"`
	Current int      `json:"current"`
	Voltage float64  `json:"voltage"`
	DOMs    []string `json:"doms"`
}

// DOMView is a live snapshot of a DOM plus its identity.
type DOMView struct {
	*moni.Snapshot
	Name   string `json:"name"`
	ProdID string `json:"prod_id"`
	Quad   int    `json:"quad"`
	Port   int    `json:"port"`
	Serial string `json:"dor_serial"`
}

type errorResponse struct {
	Error string `json:"error"`
}
