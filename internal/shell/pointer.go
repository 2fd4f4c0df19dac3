package shell

import (
	"github.com/1broseidon/deskshell/internal/drag"
)

// Press forwards a pointer press to the drag controller and acts on title
// bar buttons the way a click would.
func (s *Shell) Press(ev drag.Pointer) (drag.Hit, error) {
	hit, err := s.Drag.PointerDown(ev)
	if err != nil || ev.Button != drag.ButtonPrimary {
		return hit, err
	}
	switch hit.Part {
	case drag.PartClose:
		err = s.WM.Close(hit.Handle)
	case drag.PartMaximize:
		err = s.WM.ToggleMaximize(hit.Handle)
	case drag.PartMinimize:
		err = s.WM.Minimize(hit.Handle)
	}
	return hit, err
}
