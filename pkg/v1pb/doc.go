// Package v1pb holds the protocol buffer messages and gRPC stubs of the formula.v1 Calculator service.
package v1pb

//go:generate protoc -I. --gogo_out=plugins=grpc:. calculator.proto
