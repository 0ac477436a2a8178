package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// configFile mirrors the on-disk map-configuration JSON: a top-level
// default dog speed/bag capacity plus a list of maps, each of which may
// override them.
type configFile struct {
	DefaultDogSpeed    *float64   `json:"defaultDogSpeed"`
	DefaultBagCapacity *uint      `json:"defaultBagCapacity"`
	LootGeneratorCfg   *lootGenConfig `json:"lootGeneratorConfig"`
	Maps               []mapJSON  `json:"maps"`
}

type lootGenConfig struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type mapJSON struct {
	ID          string       `json:"id" validate:"required"`
	Name        string       `json:"name" validate:"required"`
	Roads       []roadJSON   `json:"roads"`
	Buildings   []buildingJSON `json:"buildings"`
	Offices     []officeJSON `json:"offices"`
	LootTypes   []lootTypeJSON `json:"lootTypes" validate:"required,min=1"`
	DogSpeed    *float64     `json:"dogSpeed"`
	BagCapacity *uint        `json:"bagCapacity"`
}

type roadJSON struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
}

type buildingJSON struct {
	X, Y, W, H float64
}

func (b *buildingJSON) UnmarshalJSON(data []byte) error {
	var raw struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.X, b.Y, b.W, b.H = float64(raw.X), float64(raw.Y), float64(raw.W), float64(raw.H)
	return nil
}

type officeJSON struct {
	ID      string  `json:"id" validate:"required"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type lootTypeJSON struct {
	Name  string `json:"name" validate:"required"`
	Value int    `json:"value"`
}

const (
	defaultDogSpeed    = 1.0
	defaultBagCapacity = 3
	defaultLootPeriodS = 5.0
	defaultLootProb    = 0.5
)

var validate = validator.New()

// LoadMapsFromFile parses the JSON map-configuration file at path into
// a list of immutable Maps, in file order.
func LoadMapsFromFile(path string) ([]*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	dogSpeed := defaultDogSpeed
	if cf.DefaultDogSpeed != nil {
		dogSpeed = *cf.DefaultDogSpeed
	}
	bagCapacity := uint(defaultBagCapacity)
	if cf.DefaultBagCapacity != nil {
		bagCapacity = *cf.DefaultBagCapacity
	}
	periodS, probability := defaultLootPeriodS, defaultLootProb
	if cf.LootGeneratorCfg != nil {
		periodS = cf.LootGeneratorCfg.Period
		probability = cf.LootGeneratorCfg.Probability
	}

	maps := make([]*Map, 0, len(cf.Maps))
	for _, mj := range cf.Maps {
		if err := validate.Struct(mj); err != nil {
			return nil, fmt.Errorf("invalid map %q: %w", mj.ID, err)
		}
		m := &Map{
			ID:              mj.ID,
			Name:            mj.Name,
			DogSpeed:        dogSpeed,
			BagCapacity:     bagCapacity,
			LootPeriodS:     periodS,
			LootProbability: probability,
		}
		if mj.DogSpeed != nil {
			m.DogSpeed = *mj.DogSpeed
		}
		if mj.BagCapacity != nil {
			m.BagCapacity = *mj.BagCapacity
		}
		for _, r := range mj.Roads {
			road := Road{Start: Point{X: r.X0, Y: r.Y0}}
			if r.X1 != nil {
				road.End = Point{X: *r.X1, Y: r.Y0}
			} else if r.Y1 != nil {
				road.End = Point{X: r.X0, Y: *r.Y1}
			} else {
				return nil, fmt.Errorf("road in map %q has neither x1 nor y1", mj.ID)
			}
			m.Roads = append(m.Roads, road)
		}
		for _, b := range mj.Buildings {
			m.Buildings = append(m.Buildings, Building{
				Position: Point{X: b.X, Y: b.Y},
				Width:    b.W,
				Height:   b.H,
			})
		}
		for _, o := range mj.Offices {
			if err := validate.Struct(o); err != nil {
				return nil, fmt.Errorf("invalid office in map %q: %w", mj.ID, err)
			}
			m.Offices = append(m.Offices, Office{
				ID:       o.ID,
				Position: Point{X: o.X + o.OffsetX, Y: o.Y + o.OffsetY},
				Width:    OfficeWidth,
			})
		}
		for _, lt := range mj.LootTypes {
			m.LootTypes = append(m.LootTypes, LootType{Name: lt.Name, Value: lt.Value})
		}
		maps = append(maps, m)
	}
	return maps, nil
}
