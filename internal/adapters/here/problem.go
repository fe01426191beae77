package here

import (
	"present-delivery-service/internal/domain"
	"strconv"
	"time"
)

// Tour planning v3 request shapes.
type tourProblem struct {
	Plan  tourPlan  `json:"plan"`
	Fleet tourFleet `json:"fleet"`
}

type tourPlan struct {
	Jobs []tourJob `json:"jobs"`
}

type tourJob struct {
	ID    string       `json:"id"`
	Tasks tourJobTasks `json:"tasks"`
}

type tourJobTasks struct {
	Deliveries []tourJobTask `json:"deliveries"`
}

type tourJobTask struct {
	Places []tourJobPlace `json:"places"`
	Demand []int          `json:"demand"`
}

type tourJobPlace struct {
	Location tourLocation `json:"location"`
	Times    [][2]string  `json:"times"`
	Duration int          `json:"duration"`
}

type tourLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type tourFleet struct {
	Types    []vehicleType    `json:"types"`
	Profiles []vehicleProfile `json:"profiles"`
}

type vehicleType struct {
	ID       string         `json:"id"`
	Profile  string         `json:"profile"`
	Costs    vehicleCosts   `json:"costs"`
	Shifts   []vehicleShift `json:"shifts"`
	Capacity []int          `json:"capacity"`
	Amount   int            `json:"amount"`
}

type vehicleCosts struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

type vehicleShift struct {
	Start shiftPoint `json:"start"`
	End   shiftPoint `json:"end"`
}

type shiftPoint struct {
	Time     string       `json:"time"`
	Location tourLocation `json:"location"`
}

type vehicleProfile struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Tour planning v3 solution shape. Only the fields the sequencer reads.
type tourSolution struct {
	Tours []struct {
		Stops []struct {
			Activities []tourActivity `json:"activities"`
		} `json:"stops"`
	} `json:"tours"`
	Unassigned []struct {
		JobID   string `json:"jobId"`
		Reasons []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"reasons"`
	} `json:"unassigned"`
}

type tourActivity struct {
	JobID string `json:"jobId"`
	Type  string `json:"type"`
}

const (
	vehicleTypeID      = "car_profile"
	vehicleProfileName = "car_1"
	activityDelivery   = "delivery"
	timeLayout         = "2006-01-02T15:04:05.000Z"
)

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func locationOf(p domain.GeoPoint) tourLocation {
	return tourLocation{Lat: p.Latitude, Lng: p.Longitude}
}

// buildTourJob pins a stop's delivery to the whole window with no service
// time and no demand: the solver only orders stops.
func buildTourJob(stop domain.TourStop, window domain.DeliveryWindow) tourJob {
	return tourJob{
		ID: strconv.FormatInt(stop.ID, 10),
		Tasks: tourJobTasks{
			Deliveries: []tourJobTask{{
				Places: []tourJobPlace{{
					Location: locationOf(stop.Point),
					Times:    [][2]string{{formatTime(window.Start), formatTime(window.End)}},
					Duration: 0,
				}},
				Demand: []int{0},
			}},
		},
	}
}

// buildTourProblem describes a single vehicle whose shift spans the window and
// starts and ends at start.
func buildTourProblem(start domain.GeoPoint, stops []domain.TourStop, window domain.DeliveryWindow) tourProblem {
	jobs := make([]tourJob, 0, len(stops))
	for _, s := range stops {
		jobs = append(jobs, buildTourJob(s, window))
	}

	depot := locationOf(start)

	return tourProblem{
		Plan: tourPlan{Jobs: jobs},
		Fleet: tourFleet{
			Types: []vehicleType{{
				ID:      vehicleTypeID,
				Profile: vehicleProfileName,
				Costs:   vehicleCosts{Distance: 0.0001, Time: 0},
				Shifts: []vehicleShift{{
					Start: shiftPoint{Time: formatTime(window.Start), Location: depot},
					End:   shiftPoint{Time: formatTime(window.End), Location: depot},
				}},
				Capacity: []int{0},
				Amount:   1,
			}},
			Profiles: []vehicleProfile{{Name: vehicleProfileName, Type: "car"}},
		},
	}
}
