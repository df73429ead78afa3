// Package common holds machinery shared by the operational services,
// currently the single-instance run marker that keeps two invocations from
// racing on the same repository.
package common
