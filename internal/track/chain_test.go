package track

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

func newAudioTrackWithClip(sampleRate float64, samples int) *model.Track {
	ch := make([][]float64, 2)
	ch[0] = make([]float64, samples)
	ch[1] = make([]float64, samples)
	for i := range ch[0] {
		ch[0][i] = 0.5
		ch[1][i] = 0.5
	}
	buf := &model.AudioBuffer{SampleRate: int(sampleRate), Channels: ch}

	tr := model.NewTrack(model.KindAudio, "clip-track")
	tr.Clips = append(tr.Clips, &model.Clip{
		ID:       "clip1",
		Kind:     model.KindAudio,
		Start:    0,
		Duration: float64(samples) / sampleRate,
		Gain:     1,
		Buffer:   buf,
	})
	return tr
}

func TestChainRendersClipAudio(t *testing.T) {
	const sr = 44100.0
	const blockSize = 512
	tr := newAudioTrackWithClip(sr, blockSize*4)
	c := NewChain(tr, sr, blockSize)

	all := []*model.Track{tr}
	res := c.Process(0, nil, all)

	var sum float64
	for _, v := range res.Output[0] {
		sum += v
	}
	if sum <= 0 {
		t.Fatalf("expected nonzero output mixing a clip with content, got sum %v", sum)
	}
}

func TestChainMissingBufferSilent(t *testing.T) {
	const sr = 44100.0
	const blockSize = 256
	tr := model.NewTrack(model.KindAudio, "missing-buffer")
	tr.Clips = append(tr.Clips, &model.Clip{
		ID: "c1", Kind: model.KindAudio, Start: 0, Duration: 10, Gain: 1,
	})
	c := NewChain(tr, sr, blockSize)
	res := c.Process(0, nil, []*model.Track{tr})

	for _, v := range res.Output[0] {
		if v != 0 {
			t.Fatalf("clip with no buffer should render silence, got %v", v)
		}
	}
}

func TestChainSoloSilencesNonSoloedTrack(t *testing.T) {
	const sr = 44100.0
	const blockSize = 128
	a := newAudioTrackWithClip(sr, blockSize*2)
	b := newAudioTrackWithClip(sr, blockSize*2)
	b.IsSolo = true

	chainA := NewChain(a, sr, blockSize)
	all := []*model.Track{a, b}
	res := chainA.Process(0, nil, all)

	for _, v := range res.Output[0] {
		if v != 0 {
			t.Fatalf("non-soloed track should be silenced while another track is soloed, got %v", v)
		}
	}
}

func TestChainFadeInRampsFromZero(t *testing.T) {
	const sr = 44100.0
	const blockSize = 512
	ch := make([][]float64, 2)
	ch[0] = make([]float64, blockSize)
	ch[1] = make([]float64, blockSize)
	for i := range ch[0] {
		ch[0][i] = 1.0
		ch[1][i] = 1.0
	}
	buf := &model.AudioBuffer{SampleRate: int(sr), Channels: ch}
	tr := model.NewTrack(model.KindAudio, "fade-track")
	tr.Clips = append(tr.Clips, &model.Clip{
		ID: "c1", Kind: model.KindAudio, Start: 0,
		Duration: float64(blockSize) / sr, FadeIn: float64(blockSize) / sr / 2,
		Gain: 1, Buffer: buf,
	})

	if got := fadeEnvelope(tr.Clips[0], 0); got != 0 {
		t.Fatalf("fade-in envelope at t=0 should be 0, got %v", got)
	}
	mid := tr.Clips[0].FadeIn / 2
	if got := fadeEnvelope(tr.Clips[0], mid); got <= 0 || got >= 1 {
		t.Fatalf("fade-in envelope mid-ramp should be strictly between 0 and 1, got %v", got)
	}
}

func TestChainSendsCaptureConfiguredLevel(t *testing.T) {
	const sr = 44100.0
	const blockSize = 256
	tr := newAudioTrackWithClip(sr, blockSize*2)
	tr.Sends = append(tr.Sends, &model.Send{DestinationID: "reverb-bus", Level: 0.5, IsEnabled: true})

	c := NewChain(tr, sr, blockSize)
	res := c.Process(0, nil, []*model.Track{tr})

	send, ok := res.Sends["reverb-bus"]
	if !ok {
		t.Fatalf("expected a send contribution keyed by destination id")
	}
	if len(send[0]) != blockSize {
		t.Fatalf("send buffer length = %d, want %d", len(send[0]), blockSize)
	}
}

func TestChainCenterPanAppliesEqualPowerGainNotDouble(t *testing.T) {
	const sr = 44100.0
	const blockSize = 512
	const amplitude = 0.5
	ch := make([][]float64, 2)
	ch[0] = make([]float64, blockSize)
	ch[1] = make([]float64, blockSize)
	for i := range ch[0] {
		ch[0][i] = amplitude
		ch[1][i] = amplitude
	}
	buf := &model.AudioBuffer{SampleRate: int(sr), Channels: ch}
	tr := model.NewTrack(model.KindAudio, "center-pan") // default Volume=1, Pan=0
	tr.Clips = append(tr.Clips, &model.Clip{
		ID: "c1", Kind: model.KindAudio, Start: 0,
		Duration: float64(blockSize) / sr, Gain: 1, Buffer: buf,
	})
	c := NewChain(tr, sr, blockSize)

	res := c.Process(0, nil, []*model.Track{tr})

	const want = amplitude * 0.7071067811865476 // cos(pi/4) == sin(pi/4) at pan=0
	const tol = 1e-9
	for _, v := range []float64{res.Output[0][0], res.Output[1][0]} {
		if diff := v - want; diff < -tol || diff > tol {
			t.Fatalf("center-panned unity-volume clip: got %v, want %v (equal-power pan, no extra gain)", v, want)
		}
	}
}

func TestChainBusTrackPassesThroughInput(t *testing.T) {
	const sr = 44100.0
	const blockSize = 64
	bus := model.NewTrack(model.KindBus, "bus")
	c := NewChain(bus, sr, blockSize)

	input := make([][]float64, 2)
	input[0] = make([]float64, blockSize)
	input[1] = make([]float64, blockSize)
	for i := range input[0] {
		input[0][i] = 0.25
		input[1][i] = 0.25
	}

	res := c.Process(0, input, []*model.Track{bus})
	if res.Output[0][0] == 0 {
		t.Fatalf("bus track should carry through its routed input")
	}
}
