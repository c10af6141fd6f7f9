package preload

// Priority tiers. Higher numbers are serviced first.
const (
	PriorityOther          = 1
	PrioritySecondNeighbor = 2
	PriorityNeighbor       = 3
	PriorityCurrent        = 4
	PriorityThumbnail      = 5
)

/*
initialPriority is used when an album is first opened. The current and
neighboring full resolution images sit one tier lower than they do after
navigation so that the thumbnails always lead.
*/
func initialPriority(index, current int) int {
	switch distance(index, current) {
	case 0:
		return PriorityNeighbor
	case 1:
		return PrioritySecondNeighbor
	default:
		return PriorityOther
	}
}

// navigationPriority is the priority of a request once the viewer has
// moved to current.
func navigationPriority(index, current int, isThumbnail bool) int {
	if isThumbnail {
		return PriorityThumbnail
	}

	switch distance(index, current) {
	case 0:
		return PriorityCurrent
	case 1:
		return PriorityNeighbor
	case 2:
		return PrioritySecondNeighbor
	default:
		return PriorityOther
	}
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}

	return b - a
}

/*
InitialRequests builds the preload requests for a freshly opened album. With
a known current index the thumbnails of the current image and its neighbors
come first, followed by every full resolution image. When the current index
is unknown (-1) every thumbnail is queued at the top tier and every full
image at the bottom.
*/
func InitialRequests(album []AlbumEntry, current int) []Request {
	result := []Request{}

	thumbnail := func(index int) {
		if index < 0 || index >= len(album) || album[index].ThumbnailURL == "" {
			return
		}

		result = append(result, Request{
			URL:         album[index].ThumbnailURL,
			Index:       index,
			Priority:    PriorityThumbnail,
			IsThumbnail: true,
		})
	}

	full := func(index, priority int) {
		if index < 0 || index >= len(album) || album[index].FullURL == "" {
			return
		}

		result = append(result, Request{
			URL:      album[index].FullURL,
			Index:    index,
			Priority: priority,
		})
	}

	if current < 0 || current >= len(album) {
		for index := range album {
			thumbnail(index)
			full(index, PriorityOther)
		}

		return result
	}

	thumbnail(current)
	thumbnail(current - 1)
	thumbnail(current + 1)

	full(current, initialPriority(current, current))
	full(current-1, initialPriority(current-1, current))
	full(current+1, initialPriority(current+1, current))

	for index := range album {
		if distance(index, current) > 1 {
			full(index, PriorityOther)
		}
	}

	return result
}
