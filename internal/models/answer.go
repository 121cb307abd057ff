package models

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

// AnswerSet maps a question number to the subject's yes (true) / no (false) answer
type AnswerSet map[int]bool

// Numbers returns the answered question numbers in ascending order
func (a AnswerSet) Numbers() []int {
	numbers := make([]int, 0, len(a))
	for n := range a {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Vector returns the answers ordered by question number
func (a AnswerSet) Vector() []bool {
	numbers := a.Numbers()
	vector := make([]bool, len(numbers))
	for i, n := range numbers {
		vector[i] = a[n]
	}
	return vector
}

func (a AnswerSet) YesCount() int {
	count := 0
	for _, v := range a {
		if v {
			count++
		}
	}
	return count
}

func (a AnswerSet) ToJSON() (datatypes.JSON, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func AnswerSetFromJSON(data datatypes.JSON) (AnswerSet, error) {
	answers := AnswerSet{}
	if len(data) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
