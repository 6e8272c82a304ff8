package engine

import (
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
	"github.com/oscilla-audio/engine/internal/plugin"
)

// AddPlugin appends a new insert of kind to trackID's chain, returning its
// id. Unknown kinds are rejected as InvalidCommand rather than silently
// inserting a pass-through (§7).
func (e *Engine) AddPlugin(trackID ids.ID, kind model.PluginKind) (ids.ID, error) {
	if _, err := e.lookupTrack(trackID); err != nil {
		return "", err
	}
	if plugin.New(kind) == nil {
		return "", errf(InvalidCommand, "unknown plugin kind %q", kind)
	}
	inst := model.NewPluginInstance(kind)
	err := e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		t.Inserts = append(t.Inserts, inst)
		e.rebuildChains()
		return nil
	})
	if err != nil {
		return "", err
	}
	return inst.ID, nil
}

// RemovePlugin deletes pluginID from trackID's insert chain (§3).
func (e *Engine) RemovePlugin(trackID, pluginID ids.ID) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		filtered := t.Inserts[:0]
		found := false
		for _, ins := range t.Inserts {
			if ins.ID == pluginID {
				found = true
				continue
			}
			filtered = append(filtered, ins)
		}
		if !found {
			return errf(UnknownID, "no plugin %q on track %q", pluginID, trackID)
		}
		t.Inserts = filtered
		e.rebuildChains()
		return nil
	})
}

// SetPluginParam assigns a parameter on an insert, both on the model
// record (persisted, replayed on rebuild) and the live processor instance
// for immediate effect this block (§4.2 step 3, §4.7 Write target).
func (e *Engine) SetPluginParam(trackID, pluginID ids.ID, key string, value float64) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		idx := -1
		for i, ins := range t.Inserts {
			if ins.ID == pluginID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errf(UnknownID, "no plugin %q on track %q", pluginID, trackID)
		}
		t.Inserts[idx].Params[key] = value
		if proc := e.processorFor(trackID, idx); proc != nil {
			proc.SetParam(key, value)
		}
		return nil
	})
}

// SetPluginEnabled toggles bypass for an insert (§3, §4.3 PDC: a disabled
// insert contributes zero latency).
func (e *Engine) SetPluginEnabled(trackID, pluginID ids.ID, enabled bool) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		for _, ins := range t.Inserts {
			if ins.ID == pluginID {
				ins.IsEnabled = enabled
				return nil
			}
		}
		return errf(UnknownID, "no plugin %q on track %q", pluginID, trackID)
	})
}

// processorFor returns the live Processor instance backing track trackID's
// insert at index idx, for immediate-effect param pokes outside a full
// chain rebuild.
func (e *Engine) processorFor(trackID ids.ID, idx int) plugin.Processor {
	ch, ok := e.chains[trackID]
	if !ok {
		return nil
	}
	return ch.ProcessorAt(idx)
}
