package engine

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// DAWState is the §6 "loadable representation equivalent to DAWState":
// tracks, clips with source references, plug-in params and automation
// lanes, transport settings. It deliberately omits rehydrated audio
// content (§6: "Audio content is referenced by stable URLs or content
// hashes -- not embedded"), so a Clip's in-memory Buffer never round-trips
// through this document; the host re-resolves Source after loading.
type DAWState struct {
	BPM   float64 `yaml:"bpm"`
	Key   string  `yaml:"key,omitempty"`
	Scale string  `yaml:"scale,omitempty"`

	LoopActive bool    `yaml:"loop_active"`
	LoopStart  float64 `yaml:"loop_start"`
	LoopEnd    float64 `yaml:"loop_end"`

	SelectedTrack string `yaml:"selected_track,omitempty"`
	PDCEnabled    bool   `yaml:"pdc_enabled"`

	Tracks []TrackState `yaml:"tracks"`
}

type TrackState struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
	Kind  string `yaml:"kind"`

	IsMuted bool `yaml:"is_muted"`
	IsSolo  bool `yaml:"is_solo"`
	IsArmed bool `yaml:"is_armed"`

	Volume float64 `yaml:"volume"`
	Pan    float64 `yaml:"pan"`

	InputID       string `yaml:"input_id,omitempty"`
	OutputTrackID string `yaml:"output_track_id"`

	Inserts []PluginState     `yaml:"inserts,omitempty"`
	Sends   []SendState       `yaml:"sends,omitempty"`
	Clips   []ClipState       `yaml:"clips,omitempty"`
	Lanes   []AutomationState `yaml:"automation_lanes,omitempty"`
}

type PluginState struct {
	ID        string             `yaml:"id"`
	Kind      string             `yaml:"kind"`
	IsEnabled bool               `yaml:"is_enabled"`
	Params    map[string]float64 `yaml:"params,omitempty"`
}

type SendState struct {
	DestinationID string  `yaml:"destination_id"`
	Level         float64 `yaml:"level"`
	IsEnabled     bool    `yaml:"is_enabled"`
}

type ClipState struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Offset   float64 `yaml:"offset"`
	FadeIn   float64 `yaml:"fade_in"`
	FadeOut  float64 `yaml:"fade_out"`
	Gain     float64 `yaml:"gain"`
	Reverse  bool    `yaml:"reverse,omitempty"`
	IsMuted  bool    `yaml:"is_muted,omitempty"`
	Source   string  `yaml:"source,omitempty"`
}

type AutomationState struct {
	ParamID     string       `yaml:"param_id"`
	PluginID    string       `yaml:"plugin_id,omitempty"`
	Min         float64      `yaml:"min"`
	Max         float64      `yaml:"max"`
	Breakpoints [][2]float64 `yaml:"breakpoints,omitempty"`
}

// trackKindName / parseTrackKind translate model.TrackKind to/from the
// stable document vocabulary so the YAML file doesn't depend on Go's
// iota ordering.
var trackKindNames = map[model.TrackKind]string{
	model.KindAudio:    "audio",
	model.KindMIDI:     "midi",
	model.KindBus:      "bus",
	model.KindSend:     "send",
	model.KindSampler:  "sampler",
	model.KindDrumRack: "drum_rack",
}

func trackKindName(k model.TrackKind) string {
	if name, ok := trackKindNames[k]; ok {
		return name
	}
	return "audio"
}

func parseTrackKind(name string) model.TrackKind {
	for k, n := range trackKindNames {
		if n == name {
			return k
		}
	}
	return model.KindAudio
}

// ToState snapshots a project into its persistable document form.
func ToState(p *model.ProjectState) DAWState {
	s := DAWState{
		BPM:           p.BPM,
		Key:           p.Key,
		Scale:         p.Scale,
		LoopActive:    p.LoopActive,
		LoopStart:     p.LoopStart,
		LoopEnd:       p.LoopEnd,
		SelectedTrack: string(p.SelectedTrack),
		PDCEnabled:    p.PDCEnabled,
	}
	for _, t := range p.Tracks {
		s.Tracks = append(s.Tracks, toTrackState(t))
	}
	return s
}

func toTrackState(t *model.Track) TrackState {
	ts := TrackState{
		ID:            string(t.ID),
		Name:          t.Name,
		Color:         t.Color,
		Kind:          trackKindName(t.Kind),
		IsMuted:       t.IsMuted,
		IsSolo:        t.IsSolo,
		IsArmed:       t.IsArmed,
		Volume:        t.Volume,
		Pan:           t.Pan,
		InputID:       t.InputID,
		OutputTrackID: string(t.OutputTrackID),
	}
	for _, ins := range t.Inserts {
		ts.Inserts = append(ts.Inserts, PluginState{
			ID:        string(ins.ID),
			Kind:      string(ins.Kind),
			IsEnabled: ins.IsEnabled,
			Params:    ins.Params,
		})
	}
	for _, s := range t.Sends {
		ts.Sends = append(ts.Sends, SendState{
			DestinationID: string(s.DestinationID),
			Level:         s.Level,
			IsEnabled:     s.IsEnabled,
		})
	}
	for _, c := range t.Clips {
		ts.Clips = append(ts.Clips, ClipState{
			ID:       string(c.ID),
			Kind:     trackKindName(c.Kind),
			Start:    c.Start,
			Duration: c.Duration,
			Offset:   c.Offset,
			FadeIn:   c.FadeIn,
			FadeOut:  c.FadeOut,
			Gain:     c.Gain,
			Reverse:  c.Reverse,
			IsMuted:  c.IsMuted,
			Source:   c.Source,
		})
	}
	for _, l := range t.AutomationLanes {
		as := AutomationState{
			ParamID:  l.Target.Param,
			PluginID: string(l.Target.PluginID),
			Min:      l.Min,
			Max:      l.Max,
		}
		for _, bp := range l.Breakpoints {
			as.Breakpoints = append(as.Breakpoints, [2]float64{bp.Time, bp.Value})
		}
		ts.Lanes = append(ts.Lanes, as)
	}
	return ts
}

// FromState rebuilds a project from its persisted document form. Clip
// buffers are left nil; the host is responsible for rehydrating them from
// Source (§3 Lifecycle, §6).
func FromState(s DAWState) *model.ProjectState {
	p := &model.ProjectState{
		BPM:           s.BPM,
		Key:           s.Key,
		Scale:         s.Scale,
		LoopActive:    s.LoopActive,
		LoopStart:     s.LoopStart,
		LoopEnd:       s.LoopEnd,
		SelectedTrack: ids.ID(s.SelectedTrack),
		PDCEnabled:    s.PDCEnabled,
	}
	for _, ts := range s.Tracks {
		p.Tracks = append(p.Tracks, fromTrackState(ts))
	}
	return p
}

func fromTrackState(ts TrackState) *model.Track {
	t := &model.Track{
		ID:            ids.ID(ts.ID),
		Name:          ts.Name,
		Color:         ts.Color,
		Kind:          parseTrackKind(ts.Kind),
		IsMuted:       ts.IsMuted,
		IsSolo:        ts.IsSolo,
		IsArmed:       ts.IsArmed,
		Volume:        ts.Volume,
		Pan:           ts.Pan,
		InputID:       ts.InputID,
		OutputTrackID: ids.ID(ts.OutputTrackID),
	}
	if t.Kind == model.KindDrumRack {
		t.DrumPads = model.NewDrumRack()
	}
	for _, ps := range ts.Inserts {
		t.Inserts = append(t.Inserts, &model.PluginInstance{
			ID:        ids.ID(ps.ID),
			Kind:      model.PluginKind(ps.Kind),
			IsEnabled: ps.IsEnabled,
			Params:    ps.Params,
		})
	}
	for _, ss := range ts.Sends {
		t.Sends = append(t.Sends, &model.Send{
			DestinationID: ids.ID(ss.DestinationID),
			Level:         ss.Level,
			IsEnabled:     ss.IsEnabled,
		})
	}
	for _, cs := range ts.Clips {
		t.Clips = append(t.Clips, &model.Clip{
			ID:       ids.ID(cs.ID),
			Kind:     parseTrackKind(cs.Kind),
			Start:    cs.Start,
			Duration: cs.Duration,
			Offset:   cs.Offset,
			FadeIn:   cs.FadeIn,
			FadeOut:  cs.FadeOut,
			Gain:     cs.Gain,
			Reverse:  cs.Reverse,
			IsMuted:  cs.IsMuted,
			Source:   cs.Source,
		})
	}
	for _, as := range ts.Lanes {
		target := model.ParamTarget{TrackID: t.ID, PluginID: ids.ID(as.PluginID), Param: as.ParamID}
		lane := model.NewAutomationLane(target, as.Min, as.Max)
		for _, bp := range as.Breakpoints {
			lane.Insert(model.Breakpoint{Time: bp[0], Value: bp[1]})
		}
		t.AutomationLanes = append(t.AutomationLanes, lane)
	}
	return t
}

// SaveState serializes a project to a YAML document at path (§6 persisted
// state, §9 supplemented project load/save).
func SaveState(p *model.ProjectState, path string) error {
	data, err := yaml.Marshal(ToState(p))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState deserializes a YAML document at path into a fresh project.
func LoadState(path string) (*model.ProjectState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s DAWState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return FromState(s), nil
}
