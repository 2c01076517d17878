package rainclassroom

type envelope[T any] struct {
	Code    *int   `json:"code"`
	ErrCode *int   `json:"errcode"`
	Msg     string `json:"msg"`
	ErrMsg  string `json:"errmsg"`
	Data    T      `json:"data"`
}

type teacherPayload struct {
	Name string `json:"name"`
}

type activeCoursesPayload struct {
	List []struct {
		ClassroomID ID             `json:"classroom_id"`
		Name        string         `json:"name"`
		Teacher     teacherPayload `json:"teacher"`
	} `json:"list"`
}

type archivedCoursesPayload struct {
	Classrooms []struct {
		ID      ID             `json:"id"`
		Name    string         `json:"name"`
		Teacher teacherPayload `json:"teacher"`
	} `json:"classrooms"`
}

type activitiesPayload struct {
	Activities []struct {
		CoursewareID ID     `json:"courseware_id"`
		Title        string `json:"title"`
	} `json:"activities"`
}

type replayPayload struct {
	Live []struct {
		URL   string `json:"url"`
		Order int    `json:"order"`
	} `json:"live"`
}

type lessonSummaryPayload struct {
	Presentations []struct {
		ID    ID     `json:"id"`
		Title string `json:"title"`
	} `json:"presentations"`
}

type presentationPayload struct {
	Presentation struct {
		ID    ID     `json:"id"`
		Title string `json:"title"`
	} `json:"presentation"`
	Slides []struct {
		Index   int    `json:"index"`
		Cover   string `json:"cover"`
		Problem *struct {
			Content struct {
				Answer answerList `json:"answer"`
			} `json:"content"`
		} `json:"problem"`
	} `json:"slides"`
}
