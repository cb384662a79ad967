package mysql

const createJournalSQL = `
CREATE TABLE IF NOT EXISTS workflow_journal (
  id               BIGINT AUTO_INCREMENT PRIMARY KEY,
  place_id         BIGINT       NOT NULL,
  operation        VARCHAR(16)  NOT NULL,
  status           VARCHAR(32)  NOT NULL,
  amenities_failed INT          NOT NULL DEFAULT 0,
  images_failed    INT          NOT NULL DEFAULT 0,
  detail           TEXT         NULL,
  recorded_at      DATETIME(3)  NOT NULL,
  KEY idx_journal_status (status, recorded_at)
)`

const insertOutcomeSQL = `
INSERT INTO workflow_journal
  (place_id, operation, status, amenities_failed, images_failed, detail, recorded_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// compensated rows are settled; everything else that is not complete needs a look.
const listIncompleteSQL = `
SELECT id, place_id, operation, status, amenities_failed, images_failed, COALESCE(detail, ''), recorded_at
FROM workflow_journal
WHERE status IN ('incomplete', 'compensation_failed')
ORDER BY recorded_at DESC, id DESC
LIMIT ?
`
