package dto

// CreateLessonRequest carries a full lesson payload.
type CreateLessonRequest struct {
	Semester    int    `json:"semester" validate:"required,min=1"`
	WeekNumber  int    `json:"week_number" validate:"required,min=1,max=18"`
	GroupName   string `json:"group_name" validate:"required"`
	Course      int    `json:"course" validate:"omitempty,min=1,max=6"`
	Faculty     string `json:"faculty"`
	Subject     string `json:"subject" validate:"required"`
	LessonType  string `json:"lesson_type" validate:"required"`
	Subgroup    int    `json:"subgroup" validate:"omitempty,min=0"`
	Date        string `json:"date" validate:"required"`
	Weekday     int    `json:"weekday" validate:"required,min=1,max=6"`
	TimeStart   string `json:"time_start" validate:"required"`
	TimeEnd     string `json:"time_end" validate:"required"`
	TeacherName string `json:"teacher_name"`
	Auditory    string `json:"auditory"`
}

// UpdateLessonRequest carries a partial lesson update. Nil fields are
// left untouched. Force skips conflict detection on placement changes.
type UpdateLessonRequest struct {
	Semester    *int    `json:"semester" validate:"omitempty,min=1"`
	WeekNumber  *int    `json:"week_number" validate:"omitempty,min=1,max=18"`
	GroupName   *string `json:"group_name"`
	Course      *int    `json:"course" validate:"omitempty,min=1,max=6"`
	Faculty     *string `json:"faculty"`
	Subject     *string `json:"subject"`
	LessonType  *string `json:"lesson_type"`
	Subgroup    *int    `json:"subgroup" validate:"omitempty,min=0"`
	Date        *string `json:"date"`
	Weekday     *int    `json:"weekday" validate:"omitempty,min=1,max=6"`
	TimeStart   *string `json:"time_start"`
	TimeEnd     *string `json:"time_end"`
	TeacherName *string `json:"teacher_name"`
	Auditory    *string `json:"auditory"`
	Force       bool    `json:"force_update"`
}

// ListLessonsQuery captures the supported list filters.
type ListLessonsQuery struct {
	Semester    int    `form:"semester"`
	WeekNumber  int    `form:"week"`
	GroupName   string `form:"group"`
	TeacherName string `form:"teacher"`
	Auditory    string `form:"auditory"`
	Weekday     int    `form:"weekday"`
	Date        string `form:"date"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}
