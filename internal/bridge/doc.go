// Package bridge connects the kiosk to a host runtime over a WebSocket.
//
// Every frame is a JSON Message. The kiosk sends scene and menu changes
// (actor.create, menu.update, ...) and the host answers menu.create and
// prompt requests and reports lifecycle, click and UI events. A Session
// implements scene.Host and ui.Toolkit, and delivers every event on its
// own loop.
package bridge
