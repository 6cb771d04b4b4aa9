// Package tools holds code generation entry points. Run `go generate ./tools`.
package tools

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen -generate types,client -package quotesenseclient -o ../client/quotesense.gen.go ../api/openapi.yaml
