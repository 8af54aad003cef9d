package normalizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// categoryCanon - таблица "вариант написания → каноническая категория".
// Ключи приведены функцией categoryKey.
var categoryCanon = map[string]string{
	"duplex":                 "Fully-Detached Duplex",
	"fully detached duplex":  "Fully-Detached Duplex",
	"detached duplex":        "Fully-Detached Duplex",
	"semi detached duplex":   "Semi-Detached Duplex",
	"semi duplex":            "Semi-Detached Duplex",
	"terrace":                "Terraced Duplex",
	"terraced":               "Terraced Duplex",
	"terrace duplex":         "Terraced Duplex",
	"terraced duplex":        "Terraced Duplex",
	"terraced house":         "Terraced Duplex",
	"bungalow":               "Bungalow",
	"detached bungalow":      "Bungalow",
	"semi detached bungalow": "Semi-Detached Bungalow",
	"apartment":              "Apartment",
	"apartments":             "Apartment",
	"flat":                   "Apartment",
	"flats":                  "Apartment",
	"apartment flat":         "Apartment",
	"flat apartment":         "Apartment",
	"block of flats":         "Block of Flats",
	"mini flat":              "Mini Flat",
	"miniflat":               "Mini Flat",
	"studio":                 "Mini Flat",
	"studio apartment":       "Mini Flat",
	"self contain":           "Mini Flat",
	"self contained":         "Mini Flat",
	"penthouse":              "Penthouse",
	"maisonette":             "Maisonette",
	"mansion":                "Mansion",
	"villa":                  "Mansion",
	"house":                  "Detached House",
	"detached house":         "Detached House",
	"townhouse":              "Townhouse",
	"town house":             "Townhouse",
	"land":                   "Land",
	"plot":                   "Land",
	"plot of land":           "Land",
	"commercial":             "Commercial Property",
	"commercial property":    "Commercial Property",
	"office":                 "Commercial Property",
	"office space":           "Commercial Property",
	"shop":                   "Commercial Property",
	"warehouse":              "Commercial Property",
}

// categoryKey приводит значение к ключу таблицы: нижний регистр, дефисы и
// подчёркивания как пробелы, схлопнутые пробелы
func categoryKey(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalCategory возвращает каноническую метку категории.
// Неизвестные значения сохраняются, но приводятся к заглавному написанию, если были в одном регистре.
func CanonicalCategory(s string) string {
	key := categoryKey(s)
	if key == "" {
		return ""
	}
	if canon, ok := categoryCanon[key]; ok {
		return canon
	}
	return titleIfUniform(collapseSpaces(s))
}

// titleIfUniform переводит в Title Case строки, записанные целиком в одном регистре
// ("lekki", "PORT HARCOURT"). Смешанный регистр считается осознанным и не трогается.
func titleIfUniform(s string) string {
	if s == "" {
		return s
	}
	if s != strings.ToLower(s) && s != strings.ToUpper(s) {
		return s
	}
	// Caser хранит состояние, поэтому создаётся на каждый вызов
	return cases.Title(language.Und).String(s)
}
