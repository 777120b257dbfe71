// Package appchunk provides Chunk, a piece of an application that serves its
// own endpoints and can render responses for other services.
//
// A Chunk's own handlers process and respond in one step, so they are
// registered directly on the server behind a validity guard. Other services
// are rendered through the embedded render.Mixin using the chunk's render
// methods:
//
//	admin, err := appchunk.New(appchunk.Options{
//		Name:      "admin",
//		RootPath:  "/admin",
//		Endpoints: table,
//		Handlers:  endpoint.HandlerMap{"stats": stats},
//		Server:    srv,
//		Default:   render.NewJSON(nil).Render,
//	})
//	admin.RenderResponsesFor(usersService, endpoint.JoinPath(admin.RootPath(), "/users"))
package appchunk
