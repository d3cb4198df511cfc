// Package port reports the host ports a devcontainer fleet publishes.
//
// Every launcher publishes its services on the host, so two devcontainers
// that declare the same port collide when the second one starts. Which
// ports count depends on the environment policy:
//
//	plain:  the top-level port (default 8000)
//	web-ui: openvscode_server.port (default 8000) and ssh.port (default 2222)
//	        for each enabled service
//
// Conflicts groups bindings by port:
//
//	for _, c := range port.Conflicts(specs, "web-ui") {
//		fmt.Println(c) // port 8000 is claimed by api/openvscode_server, web/openvscode_server
//	}
package port
