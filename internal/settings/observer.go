package settings

// Observer receives store lifecycle events, typically to feed metrics.
type Observer interface {
	Loaded(status LoadStatus)
	Saved(err error)
	Migrated(legacyKey string)
	UpdateRejected()
}

type nopObserver struct{}

func (nopObserver) Loaded(LoadStatus) {}
func (nopObserver) Saved(error)       {}
func (nopObserver) Migrated(string)   {}
func (nopObserver) UpdateRejected()   {}

// Observers fans lifecycle events out to every non-nil observer in order.
func Observers(list ...Observer) Observer {
	var out multiObserver
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) Loaded(status LoadStatus) {
	for _, o := range m {
		o.Loaded(status)
	}
}

func (m multiObserver) Saved(err error) {
	for _, o := range m {
		o.Saved(err)
	}
}

func (m multiObserver) Migrated(legacyKey string) {
	for _, o := range m {
		o.Migrated(legacyKey)
	}
}

func (m multiObserver) UpdateRejected() {
	for _, o := range m {
		o.UpdateRejected()
	}
}
