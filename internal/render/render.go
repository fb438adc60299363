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

// Package render substitutes {{ field }} merge tokens in email templates.
package render

import "regexp"

// Merge fields available to abandonment email templates.
const (
	FieldCustomerFirstName = "customer_first_name"
	FieldCustomerLastName  = "customer_last_name"
	FieldVideoLink         = "video_link"
	FieldProductID         = "product_id"
)

var token = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render replaces every well-formed token in body with its value from fields.
// Names are case sensitive and unknown names render as an empty string. Text
// that does not form a complete token is left untouched.
func Render(body string, fields map[string]string) string {
	return token.ReplaceAllStringFunc(body, func(match string) string {
		name := token.FindStringSubmatch(match)[1]
		return fields[name]
	})
}

// Fields builds the merge field set for one abandonment email.
func Fields(firstName, lastName, videoLink, productID string) map[string]string {
	return map[string]string{
		FieldCustomerFirstName: firstName,
		FieldCustomerLastName:  lastName,
		FieldVideoLink:         videoLink,
		FieldProductID:         productID,
	}
}
