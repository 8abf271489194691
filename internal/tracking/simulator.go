package tracking

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/rentfleet/internal/fleet"
	"github.com/ukydev/rentfleet/internal/models"
)

// Simulated vehicles roam a fixed box around the metro area.
var geoBox = struct {
	minLat, maxLat float64
	minLng, maxLng float64
}{33.30, 33.70, -112.30, -111.90}

// Alert thresholds, evaluated against current telemetry on every tick.
const (
	lowFuelThreshold         = 20.0
	criticalBatteryThreshold = 15.0

	speedMin = 15.0
	speedMax = 90.0
)

// Config tunes a Simulator.
type Config struct {
	Interval  time.Duration
	Publisher Publisher // optional per-tick telemetry feed
	Seed      int64     // rng seed; 0 means time-based
}

// Simulator owns the ephemeral telemetry of every vehicle in the store. One
// goroutine runs both the fixed-interval tick and store-change
// reconciliation, so store edits never race a telemetry update. Telemetry is
// seeded when a vehicle first appears, evolved on ticks without reading the
// store, and reconciled against the store only for mirrored fields.
type Simulator struct {
	store     *fleet.Store
	interval  time.Duration
	publisher Publisher
	rng       *rand.Rand
	log       *log.Entry

	mu        sync.RWMutex
	telemetry map[int64]*models.Telemetry
	tickSubs  []func([]models.Telemetry)

	changed     chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	unsubscribe func()
}

// NewSimulator creates a simulator over store. Call Start to begin ticking.
func NewSimulator(store *fleet.Store, cfg Config) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		store:     store,
		interval:  cfg.Interval,
		publisher: cfg.Publisher,
		rng:       rand.New(rand.NewSource(seed)),
		log:       log.WithField("component", "tracking-simulator"),
		telemetry: map[int64]*models.Telemetry{},
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start seeds telemetry from the current fleet and launches the tick loop.
func (s *Simulator) Start() {
	s.unsubscribe = s.store.Subscribe(func(fleet.Snapshot) {
		// Coalesce bursts; reconcile always reads the freshest store state.
		select {
		case s.changed <- struct{}{}:
		default:
		}
	})
	s.reconcile(s.store.Snapshot())
	go s.run()
	s.log.WithField("interval", s.interval).Info("Tracking simulation started")
}

// Stop tears down the tick loop. Safe to call more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.done)
	})
}

func (s *Simulator) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-s.changed:
			s.reconcile(s.store.Snapshot())
		case <-ticker.C:
			s.tick()
		}
	}
}

// GetTelemetry returns a copy of one vehicle's telemetry.
func (s *Simulator) GetTelemetry(vehicleID int64) (models.Telemetry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.telemetry[vehicleID]
	if !ok {
		return models.Telemetry{}, false
	}
	return cloneTelemetry(t), true
}

// Snapshot returns all telemetry ordered by vehicle id.
func (s *Simulator) Snapshot() []models.Telemetry {
	s.mu.RLock()
	out := make([]models.Telemetry, 0, len(s.telemetry))
	for _, t := range s.telemetry {
		out = append(out, cloneTelemetry(t))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// SubscribeTicks registers fn to receive each tick's full telemetry, for UI
// refresh. The returned function removes the subscription.
func (s *Simulator) SubscribeTicks(fn func([]models.Telemetry)) func() {
	s.mu.Lock()
	s.tickSubs = append(s.tickSubs, fn)
	idx := len(s.tickSubs) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tickSubs[idx] = nil
	}
}

// tick evolves every telemetry entry by small pseudo-random deltas. It never
// reads from the store.
func (s *Simulator) tick() {
	now := time.Now()
	s.mu.Lock()
	out := make([]models.Telemetry, 0, len(s.telemetry))
	for _, t := range s.telemetry {
		s.advance(t, now)
		out = append(out, cloneTelemetry(t))
	}
	subs := append(([]func([]models.Telemetry))(nil), s.tickSubs...)
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	for _, fn := range subs {
		if fn != nil {
			fn(out)
		}
	}
	if s.publisher != nil {
		for _, t := range out {
			if err := s.publisher.Publish(t); err != nil {
				s.log.WithError(err).WithField("vehicle_id", t.VehicleID).Error("Failed to publish telemetry")
			}
		}
	}
}

// advance applies one tick's worth of drift to t. Fuel and battery only ever
// decrease here; refuelling happens through store edits.
func (s *Simulator) advance(t *models.Telemetry, now time.Time) {
	moving := t.Status == models.StatusRented && t.Online
	if moving {
		t.Speed += (s.rng.Float64()*2 - 1) * 5
		if t.Speed < speedMin {
			t.Speed = speedMin
		}
		if t.Speed > speedMax {
			t.Speed = speedMax
		}
		t.Heading = math.Mod(t.Heading+(s.rng.Float64()*2-1)*15+360, 360)

		km := t.Speed * s.interval.Seconds() / 3600
		t.Position = jitterLocation(t.Position, km*1000, s.rng)
		t.FuelLevel = math.Max(0, t.FuelLevel-km*0.4)
		t.BatteryLevel = math.Max(0, t.BatteryLevel-km*0.2)
	} else {
		t.Speed = 0
		// parked vehicles still drain their tracker battery, slowly
		t.BatteryLevel = math.Max(0, t.BatteryLevel-0.01)
	}
	if s.rng.Float64() < 0.02 {
		t.Online = !t.Online
	}
	t.Alerts = buildAlerts(t)
	t.UpdatedAt = now
}

// reconcile folds current store state into the running telemetry: mirrored
// fields (status, image, location label) are refreshed, entries are seeded
// for new vehicles and dropped for deleted ones, and simulator-owned fields
// (position, speed, heading, fuel, battery, online) are left untouched.
func (s *Simulator) reconcile(snap fleet.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]struct{}, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		seen[v.ID] = struct{}{}
		t, ok := s.telemetry[v.ID]
		if !ok {
			s.telemetry[v.ID] = s.seedTelemetry(v)
			continue
		}
		t.Status = v.Status
		t.Image = v.Image
		t.Location = v.Location
	}
	for id := range s.telemetry {
		if _, ok := seen[id]; !ok {
			delete(s.telemetry, id)
		}
	}
}

// seedTelemetry generates initial telemetry from a vehicle's static fields.
// Rented vehicles start moving; everything else sits parked.
func (s *Simulator) seedTelemetry(v models.Vehicle) *models.Telemetry {
	t := &models.Telemetry{
		VehicleID: v.ID,
		Position: models.Location{
			Lat: geoBox.minLat + s.rng.Float64()*(geoBox.maxLat-geoBox.minLat),
			Lng: geoBox.minLng + s.rng.Float64()*(geoBox.maxLng-geoBox.minLng),
		},
		Heading:      s.rng.Float64() * 360,
		FuelLevel:    v.FuelLevel,
		BatteryLevel: 60 + s.rng.Float64()*40,
		Online:       true,
		Status:       v.Status,
		Image:        v.Image,
		Location:     v.Location,
		UpdatedAt:    time.Now(),
	}
	if v.Status == models.StatusRented {
		t.Speed = 20 + s.rng.Float64()*60
	}
	t.Alerts = buildAlerts(t)
	return t
}

func buildAlerts(t *models.Telemetry) []models.Alert {
	var alerts []models.Alert
	if t.FuelLevel < lowFuelThreshold {
		alerts = append(alerts, models.Alert{
			Code:     "low_fuel",
			Severity: "warning",
			Message:  fmt.Sprintf("fuel level at %.0f%%", t.FuelLevel),
		})
	}
	if t.BatteryLevel < criticalBatteryThreshold {
		alerts = append(alerts, models.Alert{
			Code:     "critical_battery",
			Severity: "critical",
			Message:  fmt.Sprintf("tracker battery at %.0f%%", t.BatteryLevel),
		})
	}
	if !t.Online {
		alerts = append(alerts, models.Alert{
			Code:     "offline",
			Severity: "warning",
			Message:  "vehicle tracker is offline",
		})
	}
	return alerts
}

func jitterLocation(base models.Location, meters float64, rng *rand.Rand) models.Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rng.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return models.Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func cloneTelemetry(t *models.Telemetry) models.Telemetry {
	out := *t
	out.Alerts = append([]models.Alert(nil), t.Alerts...)
	return out
}
