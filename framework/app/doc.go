// Package app is the host kernel. It wires the framework providers into a
// container, lets user providers contribute bindings, and drives the
// activate / deactivate lifecycle.
//
//	application, err := app.New()
//	application.Register(&myapp.AppServiceProvider{})
//	if err := application.Activate(); err != nil {
//	    log.Fatal(err)
//	}
//	defer application.Deactivate()
package app
