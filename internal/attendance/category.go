package attendance

// Category はイベント区分の閉じた列挙。
// DBの category 列（NULL可の文字列）はパース時に必ずこの型へ落とし、
// 以降の分岐は switch の網羅性に任せる。未知の値は Unconfigured 扱い。
type Category int

const (
	CategoryUnconfigured Category = iota
	CategoryStudyHours
	CategoryVolunteer
	CategoryMeeting
	CategorySocial
	CategoryWorkshop
)

const (
	categoryStudyHours = "study_hours"
	categoryVolunteer  = "volunteer_event"
	categoryMeeting    = "general_meeting"
	categorySocial     = "social"
	categoryWorkshop   = "workshop"
)

// ParseCategory: 空文字・未知の文字列は CategoryUnconfigured
func ParseCategory(s string) Category {
	switch s {
	case categoryStudyHours:
		return CategoryStudyHours
	case categoryVolunteer:
		return CategoryVolunteer
	case categoryMeeting:
		return CategoryMeeting
	case categorySocial:
		return CategorySocial
	case categoryWorkshop:
		return CategoryWorkshop
	default:
		return CategoryUnconfigured
	}
}

func (c Category) String() string {
	switch c {
	case CategoryStudyHours:
		return categoryStudyHours
	case CategoryVolunteer:
		return categoryVolunteer
	case CategoryMeeting:
		return categoryMeeting
	case CategorySocial:
		return categorySocial
	case CategoryWorkshop:
		return categoryWorkshop
	default:
		return ""
	}
}
