// Package service implements endpoint registries: named objects that own an
// endpoint table and map every declared endpoint to a method.
//
// A Registry is checked once, at construction. If the table is missing or
// invalid, or any endpoint has no method, the registry is returned in an
// invalid, inert state together with an error describing why. Handlers built
// from an invalid registry refuse requests with SERVICE_INVALID.
//
//	svc, err := service.NewService("users", service.Config[endpoint.ProcessFunc]{
//	    Endpoints: endpoint.Table{{Name: "list", URLSubpath: "/users"}},
//	    Methods:   endpoint.MethodMap{"list": listUsers},
//	})
package service
