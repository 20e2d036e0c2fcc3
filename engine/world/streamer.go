// Package world owns the corridor's object set and the frontier it grows from.
package world

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
)

// DrawableSink receives objects as they enter and leave the corridor. Renderers implement it.
type DrawableSink interface {
	// AddDrawable registers an object with the backend's drawable set.
	//
	// Parameters:
	//   - obj: the object to draw
	//
	// Returns:
	//   - error: an error if the backend cannot accept the object
	AddDrawable(obj *SceneObject) error

	// RemoveDrawable drops an object from the backend's drawable set. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object's ID
	RemoveDrawable(id uint64)
}

type streamer struct {
	mu *sync.Mutex

	laneOffset   float32
	step         float32
	minHeight    int
	maxHeight    int
	retainBehind float32

	rng  *rand.Rand
	sink DrawableSink
	bank style.Bank

	frontier float32
	nextID   uint64
	objects  []*SceneObject
}

// Streamer defines the World Streamer: it grows the corridor two objects at a time at the frontier.
// Thread-safe; every mutation of the frontier and object set is atomic with respect to readers.
type Streamer interface {
	// Extend creates one pair of objects at lateral offsets -lane and +lane, both at z = frontier - step,
	// registers them with the drawable sink and records the new frontier.
	// The frontier is not advanced if the sink rejects either object.
	//
	// Parameters:
	//   - frontier: the frontier to extend from
	//
	// Returns:
	//   - float32: the new frontier (frontier - step)
	//   - [2]*SceneObject: the left and right objects
	//   - error: an error if the sink rejected an object
	Extend(frontier float32) (float32, [2]*SceneObject, error)

	// Seed builds the initial corridor synchronously. The first pair lands at z = 0, so after seeding
	// the frontier is -(steps-1)*step.
	//
	// Parameters:
	//   - steps: number of pairs to create
	//
	// Returns:
	//   - error: the first sink error encountered
	Seed(steps int) error

	// Frontier returns the most negative z reached so far.
	//
	// Returns:
	//   - float32: the frontier
	Frontier() float32

	// Objects returns a snapshot of the live object set in insertion order.
	//
	// Returns:
	//   - []*SceneObject: the live objects
	Objects() []*SceneObject

	// Count returns the number of live objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Evict drops objects further than the retain distance behind the camera. No-op when the retain
	// distance is not positive.
	//
	// Parameters:
	//   - cameraZ: the camera's z coordinate
	//
	// Returns:
	//   - int: number of objects removed
	Evict(cameraZ float32) int
}

var _ Streamer = &streamer{}

// NewStreamer creates a Streamer with the corridor's default geometry: lanes at +-1.5, step 1.5,
// heights sampled from [1, 2]. The frontier starts one step ahead of the origin.
//
// Parameters:
//   - options: functional options to configure the streamer
//
// Returns:
//   - Streamer: the new streamer
func NewStreamer(options ...StreamerBuilderOption) Streamer {
	s := &streamer{
		mu:         &sync.Mutex{},
		laneOffset: 1.5,
		step:       1.5,
		minHeight:  1,
		maxHeight:  2,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.maxHeight < s.minHeight {
		panic(fmt.Sprintf("world: invalid height range [%d, %d]", s.minHeight, s.maxHeight))
	}
	s.frontier = s.step
	return s
}

func (s *streamer) Extend(frontier float32) (float32, [2]*SceneObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, pair, err := s.extend(frontier)
	if err != nil {
		return frontier, pair, err
	}
	log.Printf("[World] Extended corridor to z=%.2f (%d objects)", next, len(s.objects))
	return next, pair, nil
}

func (s *streamer) Seed(steps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < steps; i++ {
		if _, _, err := s.extend(s.frontier); err != nil {
			return fmt.Errorf("world: seed step %d: %w", i, err)
		}
	}
	log.Printf("[World] Seeded %d steps, frontier at z=%.2f", steps, s.frontier)
	return nil
}

func (s *streamer) Frontier() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frontier
}

func (s *streamer) Objects() []*SceneObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*SceneObject, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *streamer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *streamer) Evict(cameraZ float32) int {
	if s.retainBehind <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := cameraZ + s.retainBehind
	kept := s.objects[:0]
	removed := 0
	for _, obj := range s.objects {
		if obj.position[2] > limit {
			if s.sink != nil {
				s.sink.RemoveDrawable(obj.id)
			}
			removed++
			continue
		}
		kept = append(kept, obj)
	}
	for i := len(kept); i < len(s.objects); i++ {
		s.objects[i] = nil
	}
	s.objects = kept
	return removed
}

// extend performs one extension step. Caller must hold the mutex.
func (s *streamer) extend(frontier float32) (float32, [2]*SceneObject, error) {
	z := frontier - s.step
	pair := [2]*SceneObject{
		s.newObject(-s.laneOffset, z),
		s.newObject(s.laneOffset, z),
	}

	if s.sink != nil {
		for i, obj := range pair {
			if err := s.sink.AddDrawable(obj); err != nil {
				for _, added := range pair[:i] {
					s.sink.RemoveDrawable(added.id)
				}
				return frontier, [2]*SceneObject{}, fmt.Errorf("world: register object %d: %w", obj.id, err)
			}
		}
	}

	s.objects = append(s.objects, pair[0], pair[1])
	if z < s.frontier {
		s.frontier = z
	}
	return z, pair, nil
}

// newObject samples height and tint and assigns the next ID. Caller must hold the mutex.
func (s *streamer) newObject(x, z float32) *SceneObject {
	height := float32(s.minHeight + s.rng.IntN(s.maxHeight-s.minHeight+1))
	obj := &SceneObject{
		id:       s.nextID,
		position: [3]float32{x, height / 2, z},
		height:   height,
		material: NewMaterial(style.RandomTint(s.rng), s.bank),
	}
	s.nextID++
	return obj
}
