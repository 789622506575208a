package scheduling

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/organizainador/organizer-service/internal/models"
)

// RenderICS serializes occurrences as a VCALENDAR feed.
func RenderICS(name string, occurrences []models.Occurrence, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//organizainador//organizer-service//EN")
	cal.SetXWRCalName(name)

	for _, occ := range occurrences {
		event := cal.AddEvent(fmt.Sprintf("%s@organizer", occ.InstanceKey))
		event.SetDtStampTime(stamp.UTC())
		event.SetStartAt(occ.Start.UTC())
		event.SetEndAt(occ.End.UTC())
		event.SetSummary(occ.Title)
		if occ.Description != "" {
			event.SetDescription(occ.Description)
		}
		event.SetProperty(ics.ComponentPropertyCategories, string(occ.OwnerType))
	}

	return cal.Serialize()
}
