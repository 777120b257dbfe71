// Package render registers services' endpoints on an HTTP server, pairing each
// endpoint's processing method with a render method.
//
// A Target supplies the server and the render methods; a Source (normally a
// *service.Service) supplies the endpoints and their processing methods:
//
//	mixin := render.NewMixin(target, log)
//	ok := mixin.RenderResponsesFor(users, "/api")
//
// Registration is best-effort per endpoint. An endpoint whose method, render
// method, definition or verb cannot be resolved is logged and skipped; the call
// succeeds if anything was registered or nothing was asked for.
//
// At request time the composed handler refuses with SERVICE_INVALID when the
// source has been invalidated and with RENDERER_INVALID when the target has.
package render
