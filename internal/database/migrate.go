package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables the service needs.  Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		name          VARCHAR(100) NOT NULL DEFAULT '',
		phone         VARCHAR(20)  NOT NULL DEFAULT '',
		role          ENUM('CUSTOMER','ADMIN') NOT NULL DEFAULT 'CUSTOMER',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS services (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name             VARCHAR(100) NOT NULL,
		description      TEXT NOT NULL,
		price            INT UNSIGNED NOT NULL,
		duration_minutes INT UNSIGNED NOT NULL,
		category         VARCHAR(50) NOT NULL,
		image_url        VARCHAR(500) NOT NULL DEFAULT '',
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_services_active (is_active, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		service_id   BIGINT UNSIGNED NOT NULL,
		booking_date DATE NOT NULL,
		booking_time CHAR(5) NOT NULL,
		status       ENUM('pending','confirmed','completed','cancelled') NOT NULL DEFAULT 'pending',
		notes        TEXT NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_bookings_user (user_id, booking_date, booking_time),
		INDEX idx_bookings_slot (booking_date, booking_time, service_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_bookings_service FOREIGN KEY (service_id) REFERENCES services(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// seedServices is the opening catalog, inserted only into an empty table.
var seedServices = []struct {
	name, description, category, image string
	price, minutes                     uint32
}{
	{"基础面部护理", "深层清洁、去角质、补水保湿、适合所有肌肤类型", "面部护理", "/images/facial-basic.jpg", 298, 60},
	{"抗衰老面部护理", "采用先进抗衰技术、美容肌肽、减少细纹、恢复年轻光彩", "面部护理", "/images/facial-anti-aging.jpg", 498, 90},
	{"祛痘调理护理", "针对痘痘肌肤专业调理、控油消炎、改善肌肤问题", "面部护理", "/images/acne-treatment.jpg", 368, 75},
	{"美白淡斑护理", "专业美白淡斑、改善暗沉、提亮肤色", "面部护理", "/images/whitening.jpg", 428, 80},
	{"经典修眉造型", "专业修眉师为您设计最适合的眉型、精细修整", "美容护理", "/images/eyebrow.jpg", 88, 30},
	{"半永久纹眉", "半持久半永久文眉、自然质感、持久美丽", "美容护理", "/images/permanent-eyebrow.jpg", 1288, 120},
	{"睫毛嫁接", "专业睫毛嫁接、打造浓密纤长睫毛、自然立体感", "美睫护理", "/images/eyelash.jpg", 198, 90},
	{"睫毛烫卷", "专业睫毛烫卷、让您睫毛更自然弯曲、持久立体", "美睫护理", "/images/eyelash-perm.jpg", 128, 45},
	{"指甲基础护理", "修整指甲护理、去除死皮、让您指甲更健康", "美甲护理", "/images/nail-basic.jpg", 68, 40},
	{"经典款美甲", "经典款色选择、精美美甲设计、持久美丽", "美甲护理", "/images/nail-classic.jpg", 158, 60},
	{"日式光疗美甲", "日式独特光疗工艺、光泽度高、不易脱落", "美甲护理", "/images/nail-japanese.jpg", 228, 90},
	{"3D立体美甲", "立体美甲设计、独特创意、高端个性定制", "美甲护理", "/images/nail-3d.jpg", 298, 120},
}

// Migrate creates missing tables and seeds the catalog when it is empty.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services").Scan(&n); err != nil {
		return fmt.Errorf("count services: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, s := range seedServices {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO services (name, description, price, duration_minutes, category, image_url) VALUES (?,?,?,?,?,?)",
			s.name, s.description, s.price, s.minutes, s.category, s.image); err != nil {
			return fmt.Errorf("seed service %q: %w", s.name, err)
		}
	}
	return nil
}
