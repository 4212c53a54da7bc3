package bindings

const (
	ActionSendRequest   ActionID = "send_request"
	ActionCycleMethod   ActionID = "cycle_method"
	ActionNextTab       ActionID = "next_tab"
	ActionPrevTab       ActionID = "prev_tab"
	ActionAddRow        ActionID = "add_row"
	ActionToggleRow     ActionID = "toggle_row"
	ActionFocusNext     ActionID = "focus_next"
	ActionFocusPrev     ActionID = "focus_prev"
	ActionCopyBody      ActionID = "copy_body"
	ActionCopyHeaders   ActionID = "copy_headers"
	ActionCancelRequest ActionID = "cancel_request"
	ActionQuit          ActionID = "quit"
)

type definition struct {
	id       ActionID
	label    string
	defaults [][]string
}

var definitions = []definition{
	{id: ActionSendRequest, label: "send", defaults: [][]string{{"ctrl+s"}, {"ctrl+enter"}}},
	{id: ActionCycleMethod, label: "method", defaults: [][]string{{"ctrl+t"}}},
	{id: ActionNextTab, label: "next tab", defaults: [][]string{{"ctrl+n"}}},
	{id: ActionPrevTab, label: "prev tab", defaults: [][]string{{"ctrl+p"}}},
	{id: ActionAddRow, label: "add row", defaults: [][]string{{"ctrl+a"}}},
	{id: ActionToggleRow, label: "toggle row", defaults: [][]string{{"ctrl+e"}}},
	{id: ActionFocusNext, label: "next field", defaults: [][]string{{"tab"}}},
	{id: ActionFocusPrev, label: "prev field", defaults: [][]string{{"shift+tab"}}},
	{id: ActionCopyBody, label: "copy body", defaults: [][]string{{"ctrl+y"}}},
	{id: ActionCopyHeaders, label: "copy headers", defaults: [][]string{{"alt+y"}}},
	{id: ActionCancelRequest, label: "cancel", defaults: [][]string{{"esc"}}},
	{id: ActionQuit, label: "quit", defaults: [][]string{{"ctrl+q"}, {"ctrl+c"}}},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()

// Label returns the short help label for an action.
func Label(id ActionID) string {
	if def, ok := definitionLookup[id]; ok {
		return def.label
	}
	return string(id)
}
