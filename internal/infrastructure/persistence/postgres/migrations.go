package postgres

// GetMigrations returns the embedded schema migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "catalog", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "programs", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "plans", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// 001: CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS institutions (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
    id              TEXT PRIMARY KEY,
    institution_id  TEXT NOT NULL REFERENCES institutions(id) ON DELETE CASCADE,
    subject         TEXT NOT NULL,
    number          TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    credits         INTEGER NOT NULL CHECK (credits > 0),
    has_lab         BOOLEAN NOT NULL DEFAULT FALSE,
    course_type     TEXT NOT NULL DEFAULT 'lecture',
    prerequisites   TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    UNIQUE (institution_id, subject, number)
);

CREATE INDEX IF NOT EXISTS idx_courses_code ON courses(subject, number);

CREATE TABLE IF NOT EXISTS equivalencies (
    id                    TEXT PRIMARY KEY,
    course_id             TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    equivalent_course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    equivalency_type      TEXT NOT NULL DEFAULT 'direct',
    notes                 TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    CHECK (course_id <> equivalent_course_id)
);

CREATE INDEX IF NOT EXISTS idx_equivalencies_course ON equivalencies(course_id);
CREATE INDEX IF NOT EXISTS idx_equivalencies_equivalent ON equivalencies(equivalent_course_id);
`

const migration001Down = `
DROP TABLE IF EXISTS equivalencies;
DROP TABLE IF EXISTS courses;
DROP TABLE IF EXISTS institutions;
`

// ══════════════════════════════════════════════════════════════════════════════
// 002: PROGRAMS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS programs (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    program_type    TEXT NOT NULL DEFAULT '',
    institution_id  TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS requirements (
    id                TEXT PRIMARY KEY,
    program_id        TEXT NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
    category          TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    credits_required  INTEGER NOT NULL DEFAULT 0 CHECK (credits_required >= 0),
    requirement_type  TEXT NOT NULL DEFAULT 'simple',
    priority_order    INTEGER NOT NULL DEFAULT 0,
    position          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_requirements_program ON requirements(program_id, priority_order, position);

CREATE TABLE IF NOT EXISTS requirement_groups (
    id                      TEXT PRIMARY KEY,
    requirement_id          TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
    name                    TEXT NOT NULL DEFAULT '',
    courses_required        INTEGER,
    credits_required        INTEGER,
    min_credits_per_course  INTEGER,
    max_credits_per_course  INTEGER,
    position                INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_requirement_groups_requirement ON requirement_groups(requirement_id, position);

CREATE TABLE IF NOT EXISTS group_course_options (
    group_id        TEXT NOT NULL REFERENCES requirement_groups(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    course_code     TEXT NOT NULL,
    institution_id  TEXT NOT NULL DEFAULT '',
    is_preferred    BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (group_id, position)
);

CREATE TABLE IF NOT EXISTS requirement_constraints (
    id               TEXT PRIMARY KEY,
    requirement_id   TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
    description      TEXT NOT NULL DEFAULT '',
    constraint_type  TEXT NOT NULL,
    params           JSONB NOT NULL DEFAULT '{}'::jsonb,
    scope_subject    TEXT NOT NULL DEFAULT '',
    scope_level_min  INTEGER,
    scope_level_max  INTEGER,
    position         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_requirement_constraints_requirement ON requirement_constraints(requirement_id, position);
`

const migration002Down = `
DROP TABLE IF EXISTS requirement_constraints;
DROP TABLE IF EXISTS group_course_options;
DROP TABLE IF EXISTS requirement_groups;
DROP TABLE IF EXISTS requirements;
DROP TABLE IF EXISTS programs;
`

// ══════════════════════════════════════════════════════════════════════════════
// 003: PLANS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS plans (
    id                  TEXT PRIMARY KEY,
    code                TEXT NOT NULL UNIQUE,
    student_name        TEXT NOT NULL DEFAULT '',
    current_program_id  TEXT NOT NULL DEFAULT '',
    target_program_id   TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS planned_courses (
    id                    TEXT PRIMARY KEY,
    seq                   BIGSERIAL,
    plan_id               TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
    course_id             TEXT NOT NULL,
    status                TEXT NOT NULL DEFAULT 'planned'
                          CHECK (status IN ('planned', 'in_progress', 'completed')),
    credits_override      INTEGER CHECK (credits_override >= 0),
    requirement_group_id  TEXT,
    requirement_category  TEXT NOT NULL DEFAULT '',
    grade                 TEXT NOT NULL DEFAULT '',
    semester              TEXT NOT NULL DEFAULT '',
    year                  INTEGER NOT NULL DEFAULT 0,
    created_at            TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_planned_courses_plan ON planned_courses(plan_id, seq);
`

const migration003Down = `
DROP TABLE IF EXISTS planned_courses;
DROP TABLE IF EXISTS plans;
`
