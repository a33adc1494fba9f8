package modelbind_test

import (
	mb "github.com/reoring/modelbind"
)

func petType() *mb.ModelType {
	return mb.NewObjectType("Pet", mb.NewObjectMeta(
		mb.Field("name", mb.StringProperty(mb.Required())),
		mb.Field("age", mb.IntegerProperty()),
		mb.Field("birthDate", mb.DateProperty(mb.Named("birth_date"))),
		mb.Field("tags", mb.ArrayProperty([]mb.Candidate{mb.StringProperty()})),
	))
}

func petData() *mb.Mapping {
	return mb.MappingOf(
		"name", "Rex",
		"age", 3,
		"birth_date", "2020-02-29",
		"tags", []any{"good", "dog"},
	)
}
