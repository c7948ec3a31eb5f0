package engine

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

// groupingResult is the reshaped requirement list: true parallel groups plus
// everything that schedules independently.
type groupingResult struct {
	groups     []models.ParallelGroup
	standalone []models.CourseRequirement
	// byGroup maps a group id to the requirements it covers, at the
	// synchronized hour count.
	byGroup map[string][]models.CourseRequirement
}

// synchronizeGroups detects courses that must occupy identical time slots.
// Requirements sharing (subject, grade) form a parallel group only when more
// than one distinct teacher covers the grade's classes; a single teacher
// listed against several classes needs no synchronization. When members
// disagree on weekly hours, the group runs at the minimum and each member's
// surplus hours are carved off into a standalone requirement so teaching load
// is never silently over-counted.
func synchronizeGroups(courses []models.CourseRequirement) groupingResult {
	res := groupingResult{byGroup: make(map[string][]models.CourseRequirement)}

	type bucket struct {
		key      string
		explicit bool
		members  []models.CourseRequirement
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0, len(courses))

	for _, course := range courses {
		key := "pg:" + course.ParallelGroupID
		explicit := course.ParallelGroupID != ""
		if !explicit {
			key = fmt.Sprintf("sg:%s|%s", course.Subject, course.Grade)
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, explicit: explicit}
			buckets[key] = b
			order = append(order, key)
		}
		b.members = append(b.members, course)
	}

	var extras []models.CourseRequirement
	for _, key := range order {
		b := buckets[key]
		if !isParallel(b.members, b.explicit) {
			res.standalone = append(res.standalone, b.members...)
			continue
		}

		hours := lo.MinBy(b.members, func(a, c models.CourseRequirement) bool {
			return a.WeeklyHours < c.WeeklyHours
		}).WeeklyHours

		group := models.ParallelGroup{
			ID:      groupID(b.members[0], b.explicit),
			Subject: b.members[0].Subject,
			Grade:   b.members[0].Grade,
			Hours:   hours,
		}
		for _, member := range b.members {
			group.MemberIDs = append(group.MemberIDs, member.ID)
			synced := member
			synced.WeeklyHours = hours
			res.byGroup[group.ID] = append(res.byGroup[group.ID], synced)

			if surplus := member.WeeklyHours - hours; surplus > 0 {
				extra := member
				extra.WeeklyHours = surplus
				extra.ParallelGroupID = ""
				extras = append(extras, extra)
			}
		}
		sort.Strings(group.MemberIDs)
		res.groups = append(res.groups, group)
	}

	res.standalone = append(res.standalone, extras...)
	sort.Slice(res.groups, func(i, j int) bool { return res.groups[i].ID < res.groups[j].ID })
	return res
}

// isParallel is the defining test for a true parallel group.
func isParallel(members []models.CourseRequirement, explicit bool) bool {
	if len(members) < 2 {
		return false
	}
	if explicit {
		return true
	}
	teachers := lo.Uniq(lo.FlatMap(members, func(m models.CourseRequirement, _ int) []string {
		return m.TeacherIDs
	}))
	return len(teachers) > 1
}

func groupID(first models.CourseRequirement, explicit bool) string {
	if explicit {
		return first.ParallelGroupID
	}
	return fmt.Sprintf("pg-%s-%s", first.Subject, first.Grade)
}
