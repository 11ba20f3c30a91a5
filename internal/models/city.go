package models

type City struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Region   string `json:"region" yaml:"region"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
}
