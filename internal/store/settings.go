package store

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

const (
	SettingDefaultBlockMinutes = "default_block_minutes"
	SettingDefaultBlockColor   = "default_block_color"
	SettingWeeklyGoalHours     = "weekly_goal_hours"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	if err := s.selectOne(&value, s.psql.Select("value").From("settings").Where(sq.Eq{"key": key})); err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	query, args, err := s.psql.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	var settings []Setting
	if err := s.selectAll(&settings, s.psql.Select("key", "value").From("settings").OrderBy("key")); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// IntSetting reads a numeric setting, falling back to def when it is
// missing or unparseable.
func (s *Store) IntSetting(key string, def int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
