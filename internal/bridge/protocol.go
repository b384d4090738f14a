package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/ytget/mre-kiosk/internal/scene"
)

// Message is the envelope of every frame in both directions
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frames sent by the kiosk
const (
	TypeActorCreate   = "actor.create"
	TypeActorUpdate   = "actor.update"
	TypeActorDestroy  = "actor.destroy"
	TypeStreamCreate  = "stream.create"
	TypeMediaStart    = "media.start"
	TypeMediaUpdate   = "media.update"
	TypeMenuCreate    = "menu.create"
	TypeMenuMount     = "menu.mount"
	TypeMenuUpdate    = "menu.update"
	TypeElementUpdate = "element.update"
	TypeElementListen = "element.listen"
	TypePrompt        = "prompt"
)

// Frames sent by the host runtime
const (
	TypeStarted      = "started"
	TypeStopped      = "stopped"
	TypeUserJoined   = "user.joined"
	TypeUserLeft     = "user.left"
	TypeActorClicked = "actor.clicked"
	TypeUIEvent      = "ui.event"
	TypeMenuCreated  = "menu.created"
	TypePromptAnswer = "prompt.answer"
	TypeElementState = "element.state"
)

// Media states carried by media.update
const (
	MediaPlaying = "playing"
	MediaPaused  = "paused"
	MediaStopped = "stopped"
)

func encode(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", typ, err)
	}
	return json.Marshal(Message{Type: typ, Data: raw})
}

// ActorCreate asks the host to instantiate an actor
type ActorCreate struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Parent     string          `json:"parent,omitempty"`
	Resource   string          `json:"resource,omitempty"`
	Transform  scene.Transform `json:"transform"`
	Quaternion scene.Quat      `json:"quaternion"`
	Hidden     bool            `json:"hidden,omitempty"`
}

// ActorUpdate changes properties of a live actor; nil fields are unchanged
type ActorUpdate struct {
	ID        string      `json:"id"`
	Scale     *scene.Vec3 `json:"scale,omitempty"`
	Enabled   *bool       `json:"enabled,omitempty"`
	Clickable *bool       `json:"clickable,omitempty"`
}

// Ref names an object
type Ref struct {
	ID string `json:"id"`
}

// StreamCreate registers a video stream asset
type StreamCreate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// MediaStart starts a stream on an actor
type MediaStart struct {
	ID      string  `json:"id"`
	Actor   string  `json:"actor"`
	Stream  string  `json:"stream"`
	Volume  float64 `json:"volume"`
	Spread  float64 `json:"spread"`
	Rolloff float64 `json:"rolloff"`
}

// MediaUpdate controls a playing stream
type MediaUpdate struct {
	ID      string   `json:"id"`
	Volume  *float64 `json:"volume,omitempty"`
	Rolloff *float64 `json:"rolloff,omitempty"`
	Seek    *float64 `json:"seek,omitempty"`
	State   string   `json:"state,omitempty"`
}

// MenuCreate asks the host to load a menu template; answered by MenuCreated
type MenuCreate struct {
	ID       string     `json:"id"`
	Template string     `json:"template"`
	Scale    float64    `json:"scale"`
	Roles    []string   `json:"roles,omitempty"`
	Animate  bool       `json:"animate,omitempty"`
	Offset   scene.Vec3 `json:"offset"`
}

// MenuCreated answers MenuCreate. Grids, heights and classes are keyed by
// element id and cover the menu and every template later mounted into it.
type MenuCreated struct {
	ID      string              `json:"id"`
	Error   string              `json:"error,omitempty"`
	Grids   map[string][2]int   `json:"grids,omitempty"`
	Heights map[string]float64  `json:"heights,omitempty"`
	Classes map[string][]string `json:"classes,omitempty"`
}

// MenuMount replaces the children of a container; the new scope is View
type MenuMount struct {
	Menu      string `json:"menu"`
	Container string `json:"container"`
	Template  string `json:"template"`
	View      string `json:"view"`
}

// MenuUpdate changes a menu; nil fields are unchanged
type MenuUpdate struct {
	ID      string    `json:"id"`
	Open    *bool     `json:"open,omitempty"`
	Animate bool      `json:"animate,omitempty"`
	Roles   *[]string `json:"roles,omitempty"`
	Render  bool      `json:"render,omitempty"`
	Remove  bool      `json:"remove,omitempty"`
}

// ElementRef addresses an element inside a menu scope. An empty View is
// the menu itself.
type ElementRef struct {
	Menu    string `json:"menu"`
	View    string `json:"view,omitempty"`
	Element string `json:"element"`
}

// Image is a remote picture sized in meters
type Image struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementUpdate changes an element; nil fields are unchanged
type ElementUpdate struct {
	ElementRef
	Text       *string           `json:"text,omitempty"`
	TextHeight *float64          `json:"text_height,omitempty"`
	Value      *string           `json:"value,omitempty"`
	Enabled    *bool             `json:"enabled,omitempty"`
	Checked    *bool             `json:"checked,omitempty"`
	Asset      *string           `json:"asset,omitempty"`
	Image      *Image            `json:"image,omitempty"`
	Height     *float64          `json:"height,omitempty"`
	Items      *[]map[string]any `json:"items,omitempty"`
}

// ElementListen asks the host to forward an event of an element
type ElementListen struct {
	ElementRef
	Event string `json:"event"`
}

// ElementState reports host-side sizes of an element
type ElementState struct {
	ElementRef
	Height *float64 `json:"height,omitempty"`
	Rows   int      `json:"rows,omitempty"`
	Cols   int      `json:"cols,omitempty"`
}

// Prompt shows a dialog to a user; answered by PromptAnswer
type Prompt struct {
	ID    string `json:"id"`
	User  string `json:"user"`
	Text  string `json:"text"`
	Input bool   `json:"input,omitempty"`
}

// PromptAnswer answers Prompt
type PromptAnswer struct {
	ID        string `json:"id"`
	Submitted bool   `json:"submitted"`
	Text      string `json:"text,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Started carries the startup parameters of the host runtime
type Started struct {
	Params map[string]string `json:"params,omitempty"`
}

// UserInfo describes a participant
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// ActorClicked reports a pointer click on an actor
type ActorClicked struct {
	Actor string `json:"actor"`
	User  string `json:"user"`
}

// EventParams are the control values of a UI event
type EventParams struct {
	ID       string  `json:"id,omitempty"`
	Text     string  `json:"text,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
	Checked  bool    `json:"checked,omitempty"`
	Index    int     `json:"index,omitempty"`
	Selected string  `json:"selected,omitempty"`
}

// UIEvent reports an event on an element
type UIEvent struct {
	ElementRef
	Event  string      `json:"event"`
	User   string      `json:"user"`
	Params EventParams `json:"params"`
}
