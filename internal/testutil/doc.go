// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing conversations and driving the
// reconciliation task. They are not intended for production usage.
package testutil
