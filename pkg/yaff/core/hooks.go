package core

// Hooks observe the engine. Every field is optional. Hooks run on the
// engine's loop and must not block.
type Hooks struct {
	OnDispatch  func(it *Item, running int)
	OnDefer     func(it *Item)
	OnSettle    func(it *Item, err error, running int)
	OnDuplicate func(it *Item)
	OnDiscard   func(it *Item)
	OnUnhandled func(err error)
	OnFinalize  func(err error)
}

type hookSet []Hooks

func (hs hookSet) dispatch(it *Item, running int) {
	for _, h := range hs {
		if h.OnDispatch != nil {
			h.OnDispatch(it, running)
		}
	}
}

func (hs hookSet) deferred(it *Item) {
	for _, h := range hs {
		if h.OnDefer != nil {
			h.OnDefer(it)
		}
	}
}

func (hs hookSet) settle(it *Item, err error, running int) {
	for _, h := range hs {
		if h.OnSettle != nil {
			h.OnSettle(it, err, running)
		}
	}
}

func (hs hookSet) duplicate(it *Item) {
	for _, h := range hs {
		if h.OnDuplicate != nil {
			h.OnDuplicate(it)
		}
	}
}

func (hs hookSet) discard(it *Item) {
	for _, h := range hs {
		if h.OnDiscard != nil {
			h.OnDiscard(it)
		}
	}
}

func (hs hookSet) unhandled(err error) {
	for _, h := range hs {
		if h.OnUnhandled != nil {
			h.OnUnhandled(err)
		}
	}
}

func (hs hookSet) finalize(err error) {
	for _, h := range hs {
		if h.OnFinalize != nil {
			h.OnFinalize(err)
		}
	}
}
