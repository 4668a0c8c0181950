package models

// Driver is a roster entry. Distance is sampled once when the roster is built
// and reused for every ride of the session.
type Driver struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Plate    string  `json:"plate"`
	Model    string  `json:"model"`
	Rating   float64 `json:"rating"`      // 0-5, one decimal
	Distance float64 `json:"distance_km"` // from the rider
}

// ArrivalMinutes is the simulated time for the driver to reach the rider.
func (d Driver) ArrivalMinutes() int {
	return int(d.Distance * 2)
}
