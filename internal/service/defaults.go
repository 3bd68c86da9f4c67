package service

import (
	"time"

	"github.com/tazhate/leaderflow/internal/domain"
)

func atClock(now time.Time, days, hour, min int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+days, hour, min, 0, 0, now.Location())
}

// DefaultEvents is the starter calendar used when nothing usable is stored.
func DefaultEvents(now time.Time) []domain.Event {
	return []domain.Event{
		{
			ID:       "1",
			Title:    "Họp giao ban đầu tuần",
			Start:    atClock(now, 0, 8, 0),
			End:      atClock(now, 0, 9, 30),
			Type:     domain.EventMeeting,
			Location: "Phòng họp A",
		},
		{
			ID:       "2",
			Title:    "Tiếp đối tác Samsung",
			Start:    atClock(now, 0, 14, 0),
			End:      atClock(now, 0, 15, 30),
			Type:     domain.EventGeneral,
			Location: "Sảnh VIP",
		},
		{
			ID:          "demo-future",
			Title:       "Kiểm tra hiện trường dự án X (Gấp)",
			Start:       now.Add(45 * time.Minute),
			End:         now.Add(4 * time.Hour),
			Type:        domain.EventBusinessTrip,
			Location:    "Khu công nghiệp phía Nam",
			Description: "Sự kiện demo thông báo",
		},
	}
}

func DefaultTasks(now time.Time) []domain.Task {
	due := func(t time.Time) *time.Time { return &t }
	return []domain.Task{
		{
			ID:       "t1",
			Title:    "Phê duyệt ngân sách Q4",
			Priority: domain.PriorityUrgent,
			DueDate:  due(now.AddDate(0, 0, 1)),
		},
		{
			ID:       "t2",
			Title:    "Chuẩn bị bài phát biểu hội nghị",
			Priority: domain.PriorityHigh,
			DueDate:  due(now.AddDate(0, 0, 3)),
		},
		{
			ID:       "t4",
			Title:    "Gửi email báo cáo tiến độ (Demo 30p)",
			Priority: domain.PriorityUrgent,
			DueDate:  due(now.Add(30 * time.Minute)),
		},
	}
}

func DefaultDocuments(now time.Time) []domain.Document {
	return []domain.Document{
		{
			ID:        "d1",
			Code:      "154/BC-KHTC",
			Title:     "Báo cáo tình hình thực hiện kế hoạch vốn đầu tư công tháng 10/2023",
			Submitter: "Phòng Kế hoạch Tài chính",
			Deadline:  atClock(now, 0, 17, 0),
			Status:    domain.DocumentPending,
			Priority:  domain.PriorityUrgent,
		},
		{
			ID:        "d2",
			Code:      "23/TTr-UBND",
			Title:     "Tờ trình phê duyệt quy hoạch chi tiết 1/500 Khu đô thị phía Nam",
			Submitter: "Phòng Quản lý Đô thị",
			Deadline:  atClock(now, 2, 10, 30),
			Status:    domain.DocumentInProgress,
			Priority:  domain.PriorityHigh,
		},
	}
}
